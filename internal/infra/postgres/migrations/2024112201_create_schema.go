package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// CreateSchemaSQL creates the quiz, question, answer and result tables.
//
//go:embed 0001_create_schema.sql
var CreateSchemaSQL string

// DropSchemaSQL drops every table created by CreateSchemaSQL.
//
//go:embed 0001_drop_schema.sql
var DropSchemaSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, CreateSchemaSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, DropSchemaSQL)
			return err
		},
	)
}
