package mongo

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/quizAdmin/internal/storage"
	"github.com/letsssgooo/quizAdmin/internal/storage/storagetest"
)

// Тесты требуют живой MongoDB: QUIZ_TEST_MONGO_URI=mongodb://localhost:27017
func TestMongoStorage(t *testing.T) {
	uri := storagetest.BackendURL(t, "QUIZ_TEST_MONGO_URI")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	storagetest.Run(t, func(t *testing.T) storage.Storage {
		ctx := context.Background()
		database := "quiz_test_" + uuid.NewString()[:8]

		st, err := NewStorage(ctx, uri, database, log)
		require.NoError(t, err)

		t.Cleanup(func() {
			_ = st.client.Database(database).Drop(ctx)
			_ = st.Close(ctx)
		})

		return st
	})
}
