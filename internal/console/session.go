package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

// Action is a user choice in the interactive loop.
type Action string

const (
	ActionFilter  Action = "filter"
	ActionSort    Action = "sort"
	ActionRefresh Action = "refresh"
	ActionQuit    Action = "quit"
)

type invoiceView interface {
	Snapshot() domain.Snapshot
	SetFilter(text string) domain.Snapshot
	SortBy(field domain.SortField) domain.Snapshot
}

// Prompter asks the user for the next input.
type Prompter interface {
	Action(ctx context.Context) (Action, error)
	FilterText(ctx context.Context, current string) (string, error)
	Column(ctx context.Context, current *domain.SortField) (domain.SortField, error)
}

// Session is the interactive terminal renderer. Every input is forwarded to the view
// verbatim and the resulting snapshot is redrawn.
type Session struct {
	view     invoiceView
	prompter Prompter
	out      io.Writer
	loc      *time.Location
	logger   *zap.Logger
}

// NewSession creates a session drawing to out. A nil prompter uses huh forms.
func NewSession(view invoiceView, prompter Prompter, out io.Writer, logger *zap.Logger) *Session {
	if prompter == nil {
		prompter = HuhPrompter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{view: view, prompter: prompter, out: out, loc: time.Local, logger: logger}
}

// Run loops until the user quits, aborts the form, or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	snap := s.view.Snapshot()
	for {
		if err := s.draw(snap); err != nil {
			return err
		}

		action, err := s.prompter.Action(ctx)
		if err != nil {
			return s.finish(ctx, err)
		}

		switch action {
		case ActionFilter:
			text, err := s.prompter.FilterText(ctx, snap.Filter)
			if err != nil {
				return s.finish(ctx, err)
			}
			snap = s.view.SetFilter(text)
		case ActionSort:
			field, err := s.prompter.Column(ctx, snap.Sort.Key)
			if err != nil {
				return s.finish(ctx, err)
			}
			snap = s.view.SortBy(field)
		case ActionRefresh:
			snap = s.view.Snapshot()
		case ActionQuit:
			return nil
		default:
			s.logger.Warn("unknown console action", zap.String("action", string(action)))
		}
	}
}

func (s *Session) draw(snap domain.Snapshot) error {
	// clear screen
	if _, err := fmt.Fprint(s.out, "\033[H\033[2J"); err != nil {
		return err
	}
	return Print(s.out, snap, s.loc)
}

func (s *Session) finish(ctx context.Context, err error) error {
	if errors.Is(err, huh.ErrUserAborted) || ctx.Err() != nil {
		return nil
	}
	return errors.Wrap(err, "console prompt")
}

// HuhPrompter asks for input with huh forms.
type HuhPrompter struct{}

// Action asks what to do next.
func (HuhPrompter) Action(ctx context.Context) (Action, error) {
	var action Action
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title("Action").
				Options(
					huh.NewOption("Filter by user", ActionFilter),
					huh.NewOption("Sort by column", ActionSort),
					huh.NewOption("Refresh", ActionRefresh),
					huh.NewOption("Quit", ActionQuit),
				).
				Value(&action),
		),
	).RunWithContext(ctx)
	return action, err
}

// FilterText asks for the user name filter.
func (HuhPrompter) FilterText(ctx context.Context, current string) (string, error) {
	text := current
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Фильтр по пользователю").
				Description("Substring of the user name, empty to show everything").
				Value(&text),
		),
	).RunWithContext(ctx)
	return text, err
}

// Column asks which column to sort by.
func (HuhPrompter) Column(ctx context.Context, current *domain.SortField) (domain.SortField, error) {
	field := domain.FieldID
	if current != nil {
		field = *current
	}

	options := make([]huh.Option[domain.SortField], 0, len(domain.ColumnFields))
	for _, f := range domain.ColumnFields {
		options = append(options, huh.NewOption(ColumnLabel(f), f))
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[domain.SortField]().
				Title("Sort by").
				Options(options...).
				Value(&field),
		),
	).RunWithContext(ctx)
	return field, err
}
