package locks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/amishk599/resumegen/internal/model"
)

// DynamoAPI is the subset of the DynamoDB client the scanner needs.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Scanner finds and removes stale state locks in a lock table keyed by LockID.
type Scanner struct {
	client DynamoAPI
	table  string
	logger *slog.Logger
}

func NewScanner(client DynamoAPI, table string, logger *slog.Logger) *Scanner {
	return &Scanner{client: client, table: table, logger: logger}
}

// lockInfo is the subset of the Info document Terraform writes.
type lockInfo struct {
	Created   string `json:"Created"`
	Who       string `json:"Who"`
	Operation string `json:"Operation"`
}

// FindStale scans the whole table and returns locks whose age at now is
// strictly greater than threshold. Items without a readable creation time are
// skipped.
func (s *Scanner) FindStale(ctx context.Context, threshold time.Duration, now time.Time) ([]model.StaleLock, error) {
	var stale []model.StaleLock

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan lock table %s: %w", s.table, err)
		}

		for _, item := range page.Items {
			lockID := stringAttr(item, "LockID")
			if lockID == "" {
				continue
			}
			info, ok := readInfo(item["Info"])
			if !ok || info.Created == "" {
				continue
			}
			created, err := ParseCreated(info.Created)
			if err != nil {
				s.logger.Debug("skipping lock with unreadable timestamp", "lock_id", lockID, "error", err)
				continue
			}

			age := now.UTC().Sub(created)
			if age <= threshold {
				continue
			}
			stale = append(stale, model.StaleLock{
				LockID:     lockID,
				Created:    info.Created,
				AgeMinutes: int(age / time.Minute),
				Who:        info.Who,
				Operation:  info.Operation,
			})
		}
	}

	s.logger.Debug("lock table scanned", "table", s.table, "stale", len(stale))
	return stale, nil
}

// Delete removes one lock by primary key. There is no version check, so a
// lock re-acquired between scan and delete is removed too.
func (s *Scanner) Delete(ctx context.Context, lockID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"LockID": &types.AttributeValueMemberS{Value: lockID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete lock %s: %w", lockID, err)
	}
	s.logger.Info("deleted lock", "lock_id", lockID)
	return nil
}

// DeleteStale deletes each lock in order and stops at the first failure.
// It returns how many were deleted.
func (s *Scanner) DeleteStale(ctx context.Context, stale []model.StaleLock) (int, error) {
	for i, lock := range stale {
		if err := s.Delete(ctx, lock.LockID); err != nil {
			return i, err
		}
	}
	return len(stale), nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// readInfo accepts Info stored either as a map or as a JSON string.
func readInfo(av types.AttributeValue) (lockInfo, bool) {
	switch v := av.(type) {
	case *types.AttributeValueMemberM:
		return lockInfo{
			Created:   stringAttr(v.Value, "Created"),
			Who:       stringAttr(v.Value, "Who"),
			Operation: stringAttr(v.Value, "Operation"),
		}, true
	case *types.AttributeValueMemberS:
		var info lockInfo
		if err := json.Unmarshal([]byte(v.Value), &info); err != nil {
			return lockInfo{}, false
		}
		return info, true
	}
	return lockInfo{}, false
}
