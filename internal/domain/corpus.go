package domain

// TrainingExample is one labeled line of the training corpus.
type TrainingExample struct {
	Label string
	Text  string
}
