package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"faq-bot/internal/domain"
)

const (
	pkPrefixExchange = "EXCH#"
	skMeta           = "META#"
	ttlDuration      = 30 * 24 * time.Hour // 30-day TTL
)

// ErrNotFound is returned by GetExchange when no item exists for the id.
var ErrNotFound = errors.New("repository: exchange not found")

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client wraps a DynamoDB table holding the exchange transcript.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// exchangePK returns the DynamoDB partition key for an exchange.
func exchangePK(exchangeID string) string {
	return pkPrefixExchange + exchangeID
}

// ttlValue returns a Unix timestamp 30 days after from.
func ttlValue(from time.Time) int64 {
	return from.Add(ttlDuration).Unix()
}

var now = time.Now

// RecordExchange writes one answered request. Keys and TTL are derived from
// the exchange id when unset; an existing item is never overwritten.
func (c *Client) RecordExchange(ctx context.Context, ex domain.Exchange) error {
	if strings.TrimSpace(ex.ExchangeID) == "" {
		return errors.New("repository: RecordExchange: exchange id is required")
	}
	if ex.PK == "" {
		ex.PK = exchangePK(ex.ExchangeID)
	}
	if ex.SK == "" {
		ex.SK = skMeta
	}
	if ex.TTL == 0 {
		ex.TTL = ttlValue(now())
	}
	if ex.CreatedAt == "" {
		ex.CreatedAt = now().UTC().Format(time.RFC3339)
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                exchangeItem(ex),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: RecordExchange: %w", err)
	}
	return nil
}

// GetExchange reads a recorded exchange back for inspection.
func (c *Client) GetExchange(ctx context.Context, exchangeID string) (domain.Exchange, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: exchangePK(exchangeID)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Exchange{}, fmt.Errorf("repository: GetExchange get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Exchange{}, ErrNotFound
	}
	ex, err := itemToExchange(out.Item)
	if err != nil {
		return domain.Exchange{}, fmt.Errorf("repository: GetExchange decode: %w", err)
	}
	return ex, nil
}

func exchangeItem(ex domain.Exchange) map[string]types.AttributeValue {
	categories := make([]types.AttributeValue, len(ex.Categories))
	for i, c := range ex.Categories {
		categories[i] = &types.AttributeValueMemberS{Value: c}
	}
	return map[string]types.AttributeValue{
		"PK":                   &types.AttributeValueMemberS{Value: ex.PK},
		"SK":                   &types.AttributeValueMemberS{Value: ex.SK},
		"exchangeId":           &types.AttributeValueMemberS{Value: ex.ExchangeID},
		"correlationId":        &types.AttributeValueMemberS{Value: ex.CorrelationID},
		"question":             &types.AttributeValueMemberS{Value: ex.Question},
		"answer":               &types.AttributeValueMemberS{Value: ex.Answer},
		"categories":           &types.AttributeValueMemberL{Value: categories},
		"conversationComplete": &types.AttributeValueMemberBOOL{Value: ex.ConversationComplete},
		"createdAt":            &types.AttributeValueMemberS{Value: ex.CreatedAt},
		"ttl":                  &types.AttributeValueMemberN{Value: strconv.FormatInt(ex.TTL, 10)},
	}
}

// itemToExchange converts a DynamoDB attribute map to an Exchange.
func itemToExchange(item map[string]types.AttributeValue) (domain.Exchange, error) {
	var (
		ex  domain.Exchange
		err error
	)
	for key, dst := range map[string]*string{
		"PK":         &ex.PK,
		"SK":         &ex.SK,
		"exchangeId": &ex.ExchangeID,
		"question":   &ex.Question,
		"answer":     &ex.Answer,
	} {
		if *dst, err = strAttr(item, key); err != nil {
			return domain.Exchange{}, err
		}
	}
	ex.CorrelationID, _ = strAttr(item, "correlationId") // allow empty
	ex.CreatedAt, _ = strAttr(item, "createdAt")

	if v, ok := item["categories"].(*types.AttributeValueMemberL); ok {
		for _, c := range v.Value {
			s, ok := c.(*types.AttributeValueMemberS)
			if !ok {
				return domain.Exchange{}, errors.New(`repository: attribute "categories" holds a non-string`)
			}
			ex.Categories = append(ex.Categories, s.Value)
		}
	}
	if v, ok := item["conversationComplete"].(*types.AttributeValueMemberBOOL); ok {
		ex.ConversationComplete = v.Value
	}
	if _, ok := item["ttl"]; ok {
		if ex.TTL, err = int64Attr(item, "ttl"); err != nil {
			return domain.Exchange{}, err
		}
	}
	return ex, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func int64Attr(item map[string]types.AttributeValue, key string) (int64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
