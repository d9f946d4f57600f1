package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client        *mongo.Client
	maxCommitTime time.Duration
}

func NewTransactionManager(client *mongo.Client, maxCommitTime time.Duration) TransactionManager {
	return &mongoTransactionManager{
		client:        client,
		maxCommitTime: maxCommitTime,
	}
}

// TransactionOptions reads from a snapshot and commits with majority write
// concern.
func TransactionOptions(maxCommitTime time.Duration) *options.TransactionOptions {
	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if maxCommitTime > 0 {
		opts.SetMaxCommitTime(&maxCommitTime)
	}
	return opts
}

// ExecuteTransaction runs fn in a transaction, retrying transient errors the
// way the driver's WithTransaction does.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, TransactionOptions(m.maxCommitTime))
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
