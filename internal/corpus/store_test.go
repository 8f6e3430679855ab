package corpus

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"faq-bot/internal/domain"
)

const sampleCorpus = `greeting hello
greeting hi there

farewell bye
conversation-complete goodbye   now
`

const sampleAnswers = `# canned answers
greeting=Hi there!
farewell = Goodbye!
conversation-complete: See you!
`

func sampleFS() fstest.MapFS {
	return fstest.MapFS{
		DefaultCorpusResource:  {Data: []byte(sampleCorpus)},
		DefaultAnswersResource: {Data: []byte(sampleAnswers)},
	}
}

type failingSource struct{ err error }

func (f failingSource) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, f.err
}

func expectLoadError(t *testing.T, err error, resource string) *LoadError {
	t.Helper()
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, resource, loadErr.Resource)
	return loadErr
}

func TestLoad_HappyPath(t *testing.T) {
	src, err := NewFSSource(sampleFS())
	require.NoError(t, err)

	store, err := Load(context.Background(), src, DefaultNames())
	require.NoError(t, err)
	require.Equal(t, 4, store.Len())
	require.Equal(t, []domain.TrainingExample{
		{Label: "greeting", Text: "hello"},
		{Label: "greeting", Text: "hi there"},
		{Label: "farewell", Text: "bye"},
		{Label: "conversation-complete", Text: "goodbye now"},
	}, store.Examples())

	a, ok := store.Answer("farewell")
	require.True(t, ok)
	require.Equal(t, "Goodbye!", a)
	a, ok = store.Answer("conversation-complete")
	require.True(t, ok)
	require.Equal(t, "See you!", a)
	_, ok = store.Answer("unknown")
	require.False(t, ok)

	require.Equal(t, []string{"conversation-complete", "farewell", "greeting"}, store.Categories())
	require.Empty(t, store.Validate())
}

func TestLoad_MissingResource(t *testing.T) {
	fsys := sampleFS()
	delete(fsys, DefaultAnswersResource)
	src, err := NewFSSource(fsys)
	require.NoError(t, err)

	_, err = Load(context.Background(), src, DefaultNames())
	expectLoadError(t, err, DefaultAnswersResource)
}

func TestLoad_SourceError(t *testing.T) {
	_, err := Load(context.Background(), failingSource{err: errors.New("boom")}, DefaultNames())
	loadErr := expectLoadError(t, err, DefaultCorpusResource)
	require.ErrorContains(t, loadErr, "boom")
}

func TestLoad_ValidatesArguments(t *testing.T) {
	_, err := Load(context.Background(), nil, DefaultNames())
	require.Error(t, err)

	src, err := NewFSSource(sampleFS())
	require.NoError(t, err)
	_, err = Load(context.Background(), src, Names{Corpus: " ", Answers: DefaultAnswersResource})
	require.Error(t, err)

	_, err = NewFSSource(nil)
	require.Error(t, err)
}

func TestParseCorpus_LabelWithoutText(t *testing.T) {
	_, err := ParseCorpus(strings.NewReader("greeting hello\nfarewell\n"), "c.txt")
	loadErr := expectLoadError(t, err, "c.txt")
	require.Equal(t, 2, loadErr.Line)
	require.ErrorIs(t, err, ErrMissingText)
}

func TestParseCorpus_Empty(t *testing.T) {
	_, err := ParseCorpus(strings.NewReader("\n  \n"), "c.txt")
	require.ErrorIs(t, err, ErrEmptyResource)
}

func TestParseAnswers_Empty(t *testing.T) {
	_, err := ParseAnswers(strings.NewReader("# only a comment\n"), "a.properties")
	require.ErrorIs(t, err, ErrEmptyResource)
}

func TestParseAnswers_KeepsPlaceholdersVerbatim(t *testing.T) {
	answers, err := ParseAnswers(strings.NewReader("price-inquiry=It costs ${price}.\n"), "a.properties")
	require.NoError(t, err)
	require.Equal(t, "It costs ${price}.", answers["price-inquiry"])
}

func TestParseAnswers_ContinuationLine(t *testing.T) {
	answers, err := ParseAnswers(strings.NewReader("greeting=Hello, \\\n    how can I help?\n"), "a.properties")
	require.NoError(t, err)
	require.Equal(t, "Hello, how can I help?", answers["greeting"])
}

func TestNewStore_CopiesTables(t *testing.T) {
	examples := []domain.TrainingExample{{Label: "greeting", Text: "hello"}}
	answers := map[string]string{"greeting": "Hi there!"}
	store, err := NewStore(examples, answers)
	require.NoError(t, err)

	examples[0].Label = "mutated"
	answers["greeting"] = "mutated"

	require.Equal(t, "greeting", store.Examples()[0].Label)
	a, _ := store.Answer("greeting")
	require.Equal(t, "Hi there!", a)

	out := store.Examples()
	out[0].Text = "mutated"
	require.Equal(t, "hello", store.Examples()[0].Text)
}

func TestNewStore_RejectsEmptyTables(t *testing.T) {
	_, err := NewStore(nil, map[string]string{"a": "b"})
	require.ErrorIs(t, err, ErrEmptyResource)

	_, err = NewStore([]domain.TrainingExample{{Label: "a", Text: "b"}}, nil)
	require.ErrorIs(t, err, ErrEmptyResource)
}

func TestValidate_ReportsUntrainedCategories(t *testing.T) {
	store, err := NewStore(
		[]domain.TrainingExample{{Label: "greeting", Text: "hello"}},
		map[string]string{"greeting": "Hi", "price-inquiry": "Cheap", "farewell": "Bye"},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"farewell", "price-inquiry"}, store.Validate())
}
