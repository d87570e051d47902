package helpers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/catalog"
	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/MichalMitros/stock-watcher/internal/platform/storage"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const contentType = "Content-Type"

// Polling of asynchronous results.
const (
	WaitTimeout = 10 * time.Second
	WaitTick    = 250 * time.Millisecond
)

type inventoryEntry struct {
	IsActive   string `json:"is_active"`
	ProductURL string `json:"product_url"`
	FESKU      string `json:"fe_sku"`
	Locale     string `json:"locale"`
}

type inventoryResponse struct {
	Success bool             `json:"success"`
	ListMap []inventoryEntry `json:"listMap"`
}

// Upstream is mocked inventory API. Items are unavailable until marked otherwise.
type Upstream struct {
	mu        sync.Mutex
	available map[string]bool
	requests  int
}

// NewUpstream starts mocked inventory API server.
func NewUpstream(t *testing.T) (*httptest.Server, *Upstream) {
	t.Helper()

	up := &Upstream{available: map[string]bool{}}
	srv := httptest.NewServer(http.HandlerFunc(up.serve))
	t.Cleanup(func() {
		srv.Close()
	})

	return srv, up
}

// SetAvailable changes availability reported for sku.
func (u *Upstream) SetAvailable(sku string, available bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.available[sku] = available
}

// Requests returns number of handled requests.
func (u *Upstream) Requests() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests
}

func (u *Upstream) serve(wrt http.ResponseWriter, req *http.Request) {
	sku := req.URL.Query().Get("skus")
	locale := req.URL.Query().Get("locale")

	u.mu.Lock()
	u.requests++
	active := u.available[sku]
	u.mu.Unlock()

	body, err := json.Marshal(inventoryResponse{
		Success: true,
		ListMap: []inventoryEntry{{
			IsActive:   lo.Ternary(active, "true", "false"),
			ProductURL: "https://shop.test/" + sku,
			FESKU:      sku,
			Locale:     locale,
		}},
	})
	if err != nil {
		wrt.WriteHeader(http.StatusInternalServerError)
		return
	}

	wrt.Header().Add(contentType, "application/json")
	wrt.WriteHeader(http.StatusOK)
	_, _ = wrt.Write(body)
}

// NewCatalog returns catalog of two included and one excluded product served by upstream.
func NewCatalog(t *testing.T, upstreamURL string) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.New(catalog.Config{
		BaseEndpoint:  upstreamURL + "/inventory?skus={sku}",
		DefaultRegion: "de-de",
		Regions: []catalog.Region{
			{Name: "Germany", Code: "de-de"},
			{Name: "Sweden", Code: "sv-se"},
		},
		Products: []catalog.Product{
			{Identifier: "5090", DefaultSKU: "SKU590", Included: true},
			{Identifier: "5080", DefaultSKU: "SKU580", Included: true},
			{Identifier: "4090", DefaultSKU: "SKU490"},
		},
	})
	require.NoError(t, err, "should create test catalog")

	return cat
}

// Recorder records sent notifications.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// Notify records message.
func (r *Recorder) Notify(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

// Name returns notifier name.
func (r *Recorder) Name() string {
	return "recorder"
}

// Messages returns recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// SilentSound plays nothing.
type SilentSound struct{}

// Play returns immediately.
func (SilentSound) Play(context.Context, float64) error {
	return nil
}

// WaitForSnapshot is blocking helper function, returns stored snapshot once cond is satisfied.
func WaitForSnapshot(t *testing.T, store storage.Postgres, cond func(s *models.Snapshot) bool) *models.Snapshot {
	t.Helper()

	var snapshot *models.Snapshot
	require.Eventually(t, func() bool {
		var err error
		snapshot, err = store.LoadSnapshot(context.Background())
		return err == nil && snapshot != nil && cond(snapshot)
	}, WaitTimeout, WaitTick, "snapshot should reach expected state")

	return snapshot
}

// ItemByID returns item with identifier from snapshot, zero item when it is missing.
func ItemByID(snapshot *models.Snapshot, identifier string) models.Item {
	item, _ := lo.Find(snapshot.Items, func(i models.Item) bool { return i.Identifier == identifier })
	return item
}
