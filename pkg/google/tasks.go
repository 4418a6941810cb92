// Package google wraps the Google Tasks API: list lookup, task listing,
// and task insertion. It knows nothing about the planning pipeline.
package google

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/morrow/pkg/errs"
	"github.com/harrisonrobin/morrow/pkg/model"
)

const maxListResults = 100

// TaskInput is a new task to insert into a list.
type TaskInput struct {
	Title string
	Notes string
	Due   string // RFC 3339 timestamp, optional
}

// Client is a Google Tasks API client.
type Client struct {
	srv *tasks.Service
}

// NewClient creates a client with the given service options.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	srv, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Tasks client: %w", err)
	}
	return &Client{srv: srv}, nil
}

// WithAccessToken returns the service option for a bearer access token.
func WithAccessToken(accessToken string) option.ClientOption {
	return option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
}

// FindList returns the task list with the given title.
func (c *Client) FindList(ctx context.Context, name string) (*tasks.TaskList, error) {
	lists, err := c.srv.Tasklists.List().MaxResults(maxListResults).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("unable to list task lists", err)
	}
	for _, l := range lists.Items {
		if l.Title == name {
			return l, nil
		}
	}
	return nil, errs.Newf(errs.CodeListNotFound, "task list not found: %s", name)
}

// EnsureList returns the task list with the given title, creating it
// when absent.
func (c *Client) EnsureList(ctx context.Context, name string) (*tasks.TaskList, error) {
	list, err := c.FindList(ctx, name)
	if err == nil {
		return list, nil
	}
	if !errs.HasCode(err, errs.CodeListNotFound) {
		return nil, err
	}
	created, err := c.srv.Tasklists.Insert(&tasks.TaskList{Title: name}).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("unable to create task list %s", name), err)
	}
	return created, nil
}

// ListTasks returns the tasks in a list. With includeCompleted, completed
// and hidden items are included too; the Tasks API hides completed items
// unless both flags are set.
func (c *Client) ListTasks(ctx context.Context, listID string, includeCompleted bool) ([]model.Task, error) {
	call := c.srv.Tasks.List(listID).MaxResults(maxListResults).Context(ctx)
	if includeCompleted {
		call = call.ShowCompleted(true).ShowHidden(true)
	} else {
		call = call.ShowCompleted(false)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, wrapAPIError("unable to list tasks", err)
	}

	out := make([]model.Task, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, model.Task{
			ID:     item.Id,
			Title:  item.Title,
			Notes:  item.Notes,
			Due:    item.Due,
			Status: item.Status,
		})
	}
	return out, nil
}

// Insert creates a new task at the top of the list. The Tasks API
// prepends on insertion, pushing existing items down.
func (c *Client) Insert(ctx context.Context, listID string, input TaskInput) (*tasks.Task, error) {
	task := &tasks.Task{
		Title: input.Title,
		Notes: input.Notes,
		Due:   input.Due,
	}
	created, err := c.srv.Tasks.Insert(listID, task).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("unable to insert task %q", input.Title), err)
	}
	return created, nil
}

// wrapAPIError maps googleapi failures onto pipeline error codes.
func wrapAPIError(message string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return errs.Wrap(errs.CodeAuthFailed, message+", try 'morrow auth' again", err)
		case 404:
			return errs.Wrap(errs.CodeListNotFound, message, err)
		}
	}
	return fmt.Errorf("%s: %w", message, err)
}
