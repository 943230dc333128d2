package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() *domain.Catalog {
	c := menuFixture()
	out := &domain.Catalog{Ingredients: c.ingredients, VariantGroups: c.flavors}
	for _, p := range c.products {
		out.Products = append(out.Products, p)
	}
	for _, d := range c.combos {
		out.Combos = append(out.Combos, d)
	}
	return out
}

func TestCreateImportTaskQueuesMessage(t *testing.T) {
	tasks := newFakeImportTasks()
	broker := newFakeBroker()
	svc := NewCatalogImportService(tasks, &fakeCatalog{}, &fakeSource{}, broker, nopLogger())

	id, err := svc.CreateImportTask(context.Background(), "sheet-1", domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	task, err := svc.GetTaskStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, task.Status)
	assert.Equal(t, "admin-1", task.CreatedBy)

	require.Equal(t, 1, broker.count(queue.QueueCatalogImport))
	var msg domain.CatalogImportMessage
	require.NoError(t, json.Unmarshal(broker.published[queue.QueueCatalogImport][0], &msg))
	assert.Equal(t, id.Hex(), msg.TaskID)
	assert.Equal(t, "sheet-1", msg.SpreadsheetID)
}

func TestCreateImportTaskPublishFailure(t *testing.T) {
	tasks := newFakeImportTasks()
	broker := newFakeBroker()
	broker.publishErr = errors.New("channel closed")
	svc := NewCatalogImportService(tasks, &fakeCatalog{}, &fakeSource{}, broker, nopLogger())

	_, err := svc.CreateImportTask(context.Background(), "sheet-1", domain.Actor{})
	require.Error(t, err)

	for _, task := range tasks.tasks {
		assert.Equal(t, domain.StatusFailed, task.Status)
	}
}

func TestProcessImportTaskReplacesCatalog(t *testing.T) {
	tasks := newFakeImportTasks()
	catalog := &fakeCatalog{}
	svc := NewCatalogImportService(tasks, catalog, &fakeSource{catalog: sampleCatalog()}, newFakeBroker(), nopLogger())
	ctx := context.Background()

	id, err := svc.CreateImportTask(ctx, "sheet-1", domain.Actor{})
	require.NoError(t, err)
	require.NoError(t, svc.ProcessImportTask(ctx, id))

	task, err := svc.GetTaskStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, task.Status)
	require.NotNil(t, task.Summary)
	assert.Equal(t, domain.ImportSummary{Products: 7, Combos: 1, Ingredients: 4, VariantGroups: 1}, *task.Summary)
	require.NotNil(t, catalog.replaced)
	assert.Len(t, catalog.replaced.Products, 7)

	// redelivery of a finished task is a no-op
	catalog.replaced = nil
	require.NoError(t, svc.ProcessImportTask(ctx, id))
	assert.Nil(t, catalog.replaced)
}

func TestProcessImportTaskFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		source  CatalogSource
		catalog *fakeCatalog
		retries int
	}{
		{"parse error", &fakeSource{err: errors.New("Combos row 3: unknown slot requirement")}, &fakeCatalog{}, 1},
		{"store error", &fakeSource{catalog: sampleCatalog()}, &fakeCatalog{replaceErr: errors.New("transaction aborted")}, 1},
		{"no source", nil, &fakeCatalog{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := newFakeImportTasks()
			svc := NewCatalogImportService(tasks, tt.catalog, tt.source, newFakeBroker(), nopLogger())

			id, err := svc.CreateImportTask(ctx, "sheet-1", domain.Actor{})
			require.NoError(t, err)
			require.Error(t, svc.ProcessImportTask(ctx, id))

			task := tasks.tasks[id]
			assert.Equal(t, domain.StatusFailed, task.Status)
			assert.NotEmpty(t, task.ErrorMessage)
			assert.Equal(t, tt.retries, task.RetryCount)
			assert.Nil(t, tt.catalog.replaced)
		})
	}
}
