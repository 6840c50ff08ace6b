package pdf

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-form/internal/assets"
	"github.com/a3tai/mcp-pdf-form/internal/download"
	"github.com/a3tai/mcp-pdf-form/internal/form"
	"github.com/a3tai/mcp-pdf-form/internal/testutil"
)

func newLoadedService(t *testing.T, opts ServiceOptions) *Service {
	t.Helper()
	if opts.RevokeDelay == 0 {
		opts.RevokeDelay = -1
	}
	service, err := NewService(opts)
	require.NoError(t, err)
	require.NoError(t, service.Load(context.Background(), assets.Form(), assets.FormName))
	return service
}

func valuesByID(values []form.FormValue) map[string]any {
	out := make(map[string]any, len(values))
	for _, v := range values {
		out[v.ID] = v.Value
	}
	return out
}

func TestNewService(t *testing.T) {
	service, err := NewService(ServiceOptions{MaxFileSize: 1024 * 1024})
	require.NoError(t, err)

	assert.Equal(t, int64(1024*1024), service.GetMaxFileSize())
	assert.NotNil(t, service.Viewer())
	assert.Nil(t, service.Document())
}

func TestService_OperationsRequireDocument(t *testing.T) {
	service, err := NewService(ServiceOptions{})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = service.ReadForm(ctx)
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = service.WriteForm(ctx, WriteFormRequest{})
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = service.SaveForm(ctx, SaveFormRequest{})
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = service.FormInfo(ctx, "name", "v")
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestService_ReadBundledForm(t *testing.T) {
	service := newLoadedService(t, ServiceOptions{})

	result, err := service.ReadForm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, assets.FormName, result.Source)
	assert.Equal(t, len(result.Values), result.Count)

	ids := make([]string, len(result.Values))
	for i, v := range result.Values {
		ids[i] = v.ID
	}
	assert.Equal(t, []string{"285R", "284R", "286R", "289R", "298R", "301R", "302R", "303R"}, ids)

	values := valuesByID(result.Values)
	assert.Equal(t, false, values["289R"])
	assert.Equal(t, "", values["285R"])
}

func TestService_ReadLogsRecords(t *testing.T) {
	var buf bytes.Buffer
	originalOutput := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(originalOutput)

	service := newLoadedService(t, ServiceOptions{})
	_, err := service.WriteForm(context.Background(), WriteFormRequest{
		Values: []form.FormValue{{ID: "285R", Value: "Simon RACAUD"}},
	})
	require.NoError(t, err)

	buf.Reset()
	_, err = service.ReadForm(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Read form data:")
	assert.Contains(t, buf.String(), `"id":"285R","value":"Simon RACAUD"`)
}

func TestService_WriteDemoValues(t *testing.T) {
	service := newLoadedService(t, ServiceOptions{})

	result, err := service.WriteForm(context.Background(), WriteFormRequest{Values: form.DemoValues()})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Requested)
	assert.Equal(t, 5, result.Applied)
	assert.Empty(t, result.Ignored)

	values := valuesByID(result.Values)
	assert.Equal(t, "Simon RACAUD", values["285R"])
	assert.Len(t, values["284R"], 13)
	assert.Len(t, values["286R"], 10)
	assert.Equal(t, true, values["289R"], "a non-empty string checks the box")
	assert.Len(t, values["298R"], 8)
}

func TestService_WriteReportsIgnoredIDs(t *testing.T) {
	service := newLoadedService(t, ServiceOptions{})

	result, err := service.WriteForm(context.Background(), WriteFormRequest{Values: []form.FormValue{
		{ID: "284R", Value: "Doe"},
		{ID: "284R", Value: "again"},
		{ID: "999R", Value: "x"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, []string{"999R"}, result.Ignored)
	assert.Equal(t, "Doe", valuesByID(result.Values)["284R"])
}

func TestService_EndToEnd(t *testing.T) {
	outDir := t.TempDir()
	service := newLoadedService(t, ServiceOptions{OutputDirectory: outDir, DownloadName: "arret.pdf"})
	ctx := context.Background()

	_, err := service.WriteForm(ctx, WriteFormRequest{Values: []form.FormValue{
		{ID: "284R", Value: "Doe"},
		{ID: "289R", Value: true},
	}})
	require.NoError(t, err)

	read, err := service.ReadForm(ctx)
	require.NoError(t, err)
	values := valuesByID(read.Values)
	assert.Equal(t, "Doe", values["284R"])
	assert.Equal(t, true, values["289R"])

	saved, err := service.SaveForm(ctx, SaveFormRequest{})
	require.NoError(t, err)
	require.NotNil(t, saved.Download)
	assert.Equal(t, "arret.pdf", saved.Download.Name)
	assert.Equal(t, download.MIMETypePDF, saved.Download.MIMEType)
	assert.Equal(t, filepath.Join(outDir, "arret.pdf"), saved.Download.Location)

	data, err := os.ReadFile(saved.Download.Location)
	require.NoError(t, err)
	assert.Equal(t, saved.Download.Data, data)

	reloaded := newLoadedService(t, ServiceOptions{})
	require.NoError(t, reloaded.Load(ctx, data, "arret.pdf"))
	read, err = reloaded.ReadForm(ctx)
	require.NoError(t, err)
	values = valuesByID(read.Values)
	assert.Equal(t, "Doe", values["284R"])
	assert.Equal(t, true, values["289R"])
}

func TestService_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.pdf")
	fixture := testutil.Form{
		Pages:  []string{"custom"},
		Fields: []testutil.Field{{Name: "only", Kind: testutil.TextField, Object: 50, Value: "v"}},
	}.Bytes()
	require.NoError(t, os.WriteFile(path, fixture, 0o644))

	service, err := NewService(ServiceOptions{})
	require.NoError(t, err)
	require.NoError(t, service.LoadFile(context.Background(), path))

	result, err := service.ReadForm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)
	require.Len(t, result.Values, 1)
	assert.Equal(t, "50R", result.Values[0].ID)

	err = service.LoadFile(context.Background(), filepath.Join(dir, "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid form file")
}

func TestService_LoadFailureKeepsPreviousForm(t *testing.T) {
	service := newLoadedService(t, ServiceOptions{})

	err := service.Load(context.Background(), []byte("not a pdf"), "broken.pdf")
	require.Error(t, err)

	result, err := service.ReadForm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, assets.FormName, result.Source)
	assert.NotEmpty(t, result.Values)
}

func TestService_FormInfo(t *testing.T) {
	service := newLoadedService(t, ServiceOptions{Scale: 1})

	info, err := service.FormInfo(context.Background(), "mcp-pdf-form", "test")
	require.NoError(t, err)
	assert.Equal(t, "mcp-pdf-form", info.ServerName)
	assert.Equal(t, "test", info.Version)
	assert.Equal(t, 2, info.PageCount)
	require.Len(t, info.Pages, 2)

	assert.Equal(t, 1, info.Pages[0].Number)
	assert.InDelta(t, 595, info.Pages[0].Viewport.Width, 0.5)
	assert.InDelta(t, 842, info.Pages[0].Viewport.Height, 0.5)
	assert.Equal(t, 4, info.Pages[0].Controls)
	assert.Equal(t, 4, info.Pages[1].Controls)

	names := make([]string, len(info.AvailableTools))
	for i, tool := range info.AvailableTools {
		names[i] = tool.Name
	}
	assert.Equal(t, []string{"read", "write", "save", "form_info"}, names)
	assert.NotEmpty(t, info.UsageGuidance)
}

func TestService_ConcurrentAccess(t *testing.T) {
	service := newLoadedService(t, ServiceOptions{})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := service.WriteForm(ctx, WriteFormRequest{Values: form.DemoValues()})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := service.ReadForm(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Unexpected error: %v", err)
		}
	}
}
