package remote

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/hanvo/tickler/internal/model"
)

// ReminderPatch carries the fields of a partial reminder update.
// Nil fields are left untouched by the backend.
type ReminderPatch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Completed   *bool           `json:"is_completed,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// FetchReminders retrieves the full reminder set for the scope.
func (c *Client) FetchReminders(ctx context.Context, scope Scope) ([]model.Reminder, error) {
	var out []model.Reminder
	if err := c.get(ctx, "/reminders", scope, &out); err != nil {
		return nil, fmt.Errorf("fetching reminders: %w", err)
	}
	return out, nil
}

// CreateReminder creates a reminder and returns the stored record,
// including its backend-assigned fields.
func (c *Client) CreateReminder(ctx context.Context, rem model.Reminder, scope Scope) (*model.Reminder, error) {
	var out model.Reminder
	if err := c.post(ctx, "/reminders", scope, rem, &out); err != nil {
		return nil, fmt.Errorf("creating reminder: %w", err)
	}
	return &out, nil
}

// PatchReminder applies a partial update and returns the updated record.
// Returns ErrNotFound when the record was deleted concurrently.
func (c *Client) PatchReminder(ctx context.Context, id string, patch ReminderPatch, scope Scope) (*model.Reminder, error) {
	var out model.Reminder
	if err := c.patch(ctx, "/reminders/"+url.PathEscape(id), scope, patch, &out); err != nil {
		return nil, fmt.Errorf("patching reminder %s: %w", id, err)
	}
	return &out, nil
}

// DeleteReminder removes a reminder from the backend.
func (c *Client) DeleteReminder(ctx context.Context, id string, scope Scope) error {
	if err := c.delete(ctx, "/reminders/"+url.PathEscape(id), scope); err != nil {
		return fmt.Errorf("deleting reminder %s: %w", id, err)
	}
	return nil
}

// FetchCategories retrieves the sector's category labels, used by the
// quick-add form. The list is owned by the backend.
func (c *Client) FetchCategories(ctx context.Context, scope Scope) ([]model.Category, error) {
	var out []model.Category
	if err := c.get(ctx, "/categories", scope, &out); err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	return out, nil
}
