package internal

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/language"

	"github.com/vadiminshakov/invoiceview/config"
	"github.com/vadiminshakov/invoiceview/internal/clients"
	"github.com/vadiminshakov/invoiceview/internal/console"
	"github.com/vadiminshakov/invoiceview/internal/domain"
)

func testConfig(ui string) config.Config {
	return config.Config{
		Source: config.SourceCSV,
		UI:     ui,
		Addr:   "127.0.0.1:0",
		Locale: language.Russian,
	}
}

func testRecords() []domain.Invoice {
	return []domain.Invoice{
		{ID: 1, UserName: domain.StringPtr("Ann")},
		{ID: 2, UserName: domain.StringPtr("bob")},
	}
}

type quitPrompter struct {
	calls int
}

func (p *quitPrompter) Action(context.Context) (console.Action, error) {
	p.calls++
	return console.ActionQuit, nil
}

func (p *quitPrompter) FilterText(context.Context, string) (string, error) { return "", nil }

func (p *quitPrompter) Column(context.Context, *domain.SortField) (domain.SortField, error) {
	return domain.FieldID, nil
}

func TestCreateSource(t *testing.T) {
	tests := []struct {
		name     string
		conf     config.Config
		wantName string
		wantErr  string
	}{
		{
			name:     "postgrest",
			conf:     config.Config{Source: config.SourcePostgrest, URL: "https://x.supabase.co", APIKey: "k"},
			wantName: "postgrest",
		},
		{
			name:     "postgres",
			conf:     config.Config{Source: config.SourcePostgres, DSN: "postgres://localhost/app?sslmode=disable"},
			wantName: "postgres",
		},
		{
			name:     "csv",
			conf:     config.Config{Source: config.SourceCSV, CSVPath: "invoices.csv"},
			wantName: "csv",
		},
		{
			name:    "unsupported",
			conf:    config.Config{Source: "mongo"},
			wantErr: "unsupported source: mongo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := createSource(tt.conf)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.Name())
		})
	}
}

func TestApp_RunPrint(t *testing.T) {
	var out bytes.Buffer
	app := newApp(testConfig(config.UIPrint), clients.NewStaticClient(testRecords()), nil)
	app.out = &out

	require.NoError(t, app.Run(context.Background()))

	snap := app.View.Snapshot()
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Records, 2)
	assert.Contains(t, out.String(), "Ann")
	assert.Contains(t, out.String(), "bob")
}

func TestApp_RunPrintFetchFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	var out bytes.Buffer
	app := newApp(testConfig(config.UIPrint), clients.NewFailingClient(errors.New("connection refused")), zap.New(core))
	app.out = &out

	require.NoError(t, app.Run(context.Background()), "fetch failures are not returned")

	snap := app.View.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Records)
	require.Equal(t, 1, logs.FilterMessage("failed to load invoices").Len())
}

func TestApp_RunConsoleQuit(t *testing.T) {
	var out bytes.Buffer
	prompter := &quitPrompter{}
	app := newApp(testConfig(config.UIConsole), clients.NewStaticClient(testRecords()), nil)
	app.out = &out
	app.prompter = prompter

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 1, prompter.calls)
}

func TestApp_RunWebStopsOnCancel(t *testing.T) {
	app := newApp(testConfig(config.UIWeb), clients.NewStaticClient(testRecords()), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return !app.View.Snapshot().Loading
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
