package csvbackend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/rankrocket/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVBackend(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "faq_ledger.csv")

	b, err := New(filePath)
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	rec1 := &storage.FAQRecord{
		ID:        "csv1",
		RunID:     "run-a",
		Client:    "Tri-State Heating & Cooling",
		Keyword:   "furnace repair",
		Position:  2,
		Question:  "Is it worth repairing a 20 year old furnace?",
		Answer:    "Usually not, \"efficiency\" matters.\nCall us, we'll check it.",
		CreatedAt: now.Add(-2 * time.Hour),
	}
	rec2 := &storage.FAQRecord{
		ID:        "csv2",
		RunID:     "run-b",
		Client:    "Lakeside Plumbing",
		Keyword:   "drain cleaning",
		Position:  1,
		Question:  "How do plumbers unclog drains?",
		Answer:    "With an auger.",
		CreatedAt: now.Add(-1 * time.Hour),
	}
	require.NoError(t, b.Save(ctx, rec1))
	require.NoError(t, b.Save(ctx, rec2))

	results, err := b.Query(ctx, storage.Filter{Client: "Tri-State Heating & Cooling"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	got := results[0]
	assert.Equal(t, rec1.Answer, got.Answer, "answer must survive CSV quoting")
	assert.Equal(t, 2, got.Position)
	assert.True(t, got.CreatedAt.Equal(rec1.CreatedAt), "created_at %v != %v", got.CreatedAt, rec1.CreatedAt)

	results, err = b.Query(ctx, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "csv2", results[0].ID, "newest first")

	results, err = b.Query(ctx, storage.Filter{RunID: "run-b", Limit: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "csv2", results[0].ID)
}

func TestCSVBackend_HeaderWrittenOnce(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "faq_ledger.csv")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		b, err := New(filePath)
		require.NoError(t, err)
		require.NoError(t, b.Save(ctx, &storage.FAQRecord{ID: "r", CreatedAt: time.Now()}))
		require.NoError(t, b.Close())
	}

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "id,run_id,client"))
}

func TestCSVBackend_Empty(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "faq_ledger.csv"))
	require.NoError(t, err)
	defer b.Close()

	results, err := b.Query(context.Background(), storage.Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCSVBackend_SkipsMalformedRows(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "faq_ledger.csv")
	ctx := context.Background()

	b, err := New(filePath)
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx, &storage.FAQRecord{ID: "good-1", Question: "q1", CreatedAt: time.Now()}))
	require.NoError(t, b.Close())

	// a hand-edited spreadsheet can leave short or long rows behind
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("broken,row\na,b,c,d,1,q,a,2024-01-01T00:00:00Z,extra\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	b, err = New(filePath)
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Save(ctx, &storage.FAQRecord{ID: "good-2", Question: "q2", CreatedAt: time.Now()}))

	results, err := b.Query(ctx, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "good-2", results[0].ID)
	assert.Equal(t, "good-1", results[1].ID)
}
