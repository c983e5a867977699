package database

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	UsersTable = "users"
	TasksTable = "tasks"
)

// Tables returns the persisted layout: one table per record kind. The tasks table keys
// rows by an auto-increment sequence that doubles as insertion order; the public
// identifier is the unique id column.
func Tables() []*schema.Table {
	users := schema.NewTable(UsersTable).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeUUID}).
		AddColumn(&schema.Column{Name: "username", Type: field.TypeString, Size: 50, Unique: true}).
		AddColumn(&schema.Column{Name: "name", Type: field.TypeString, Size: 100}).
		AddColumn(&schema.Column{Name: "email", Type: field.TypeString, Size: 255}).
		AddColumn(&schema.Column{Name: "password_hash", Type: field.TypeString}).
		AddColumn(&schema.Column{
			Name:    "role",
			Type:    field.TypeEnum,
			Enums:   []string{"ADMIN", "MANAGER", "USER"},
			Default: "USER",
		}).
		AddColumn(&schema.Column{Name: "created_at", Type: field.TypeTime})

	tasks := schema.NewTable(TasksTable).
		AddPrimary(&schema.Column{Name: "seq", Type: field.TypeInt64, Increment: true}).
		AddColumn(&schema.Column{Name: "id", Type: field.TypeUUID, Unique: true}).
		AddColumn(&schema.Column{Name: "title", Type: field.TypeString, Size: 200}).
		AddColumn(&schema.Column{Name: "description", Type: field.TypeString, Size: 1000, Nullable: true}).
		AddColumn(&schema.Column{
			Name:    "status",
			Type:    field.TypeEnum,
			Enums:   []string{"PENDING", "APPROVED", "REJECTED"},
			Default: "PENDING",
		}).
		AddColumn(&schema.Column{
			Name:  "priority",
			Type:  field.TypeEnum,
			Enums: []string{"LOW", "MEDIUM", "HIGH"},
		}).
		AddColumn(&schema.Column{Name: "assigned_user_id", Type: field.TypeUUID}).
		AddColumn(&schema.Column{Name: "created_by", Type: field.TypeUUID}).
		AddColumn(&schema.Column{Name: "created_date", Type: field.TypeTime}).
		AddColumn(&schema.Column{Name: "scheduled_date", Type: field.TypeTime}).
		AddColumn(&schema.Column{Name: "approved_by", Type: field.TypeUUID, Nullable: true}).
		AddColumn(&schema.Column{Name: "approval_date", Type: field.TypeTime, Nullable: true}).
		AddColumn(&schema.Column{Name: "version", Type: field.TypeInt64, Default: 1})

	tasks.
		AddIndex("tasks_status", false, []string{"status"}).
		AddIndex("tasks_assigned_user_id", false, []string{"assigned_user_id"}).
		AddIndex("tasks_created_by", false, []string{"created_by"}).
		AddIndex("tasks_scheduled_date", false, []string{"scheduled_date"})

	return []*schema.Table{users, tasks}
}

// Migrate creates or upgrades the tables through ent's schema migrator.
func (d *DB) Migrate(ctx context.Context) error {
	migrate, err := schema.NewMigrate(d.Driver,
		schema.WithDropIndex(true),
		schema.WithForeignKeys(false),
	)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := migrate.Create(ctx, Tables()...); err != nil {
		return fmt.Errorf("create schema resources: %w", err)
	}

	slog.Info("database schema migrated", "dialect", d.Dialect)
	return nil
}
