package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/ticketflow/inventory/internal/config"
    "github.com/ticketflow/inventory/internal/inventory"
    "github.com/ticketflow/inventory/internal/model"
)

// fakeLedger is a read-only LedgerStore backed by a map, enough to drive the
// façade in handler tests.
type fakeLedger struct {
    rows map[string]*model.TicketInventory
}

func (f *fakeLedger) CreateInventory(context.Context, *model.TicketInventory) error {
    return model.ErrAlreadyExists
}

func (f *fakeLedger) GetInventory(_ context.Context, id string) (*model.TicketInventory, error) {
    row, ok := f.rows[id]
    if !ok {
        return nil, model.ErrNotFound
    }
    return row, nil
}

func (f *fakeLedger) GetInventoryBulk(_ context.Context, ids []string) ([]*model.TicketInventory, error) {
    var out []*model.TicketInventory
    for _, id := range ids {
        if row, ok := f.rows[id]; ok {
            out = append(out, row)
        }
    }
    return out, nil
}

func (f *fakeLedger) ListInventoryByEvent(_ context.Context, eventID string) ([]*model.TicketInventory, error) {
    var out []*model.TicketInventory
    for _, row := range f.rows {
        if row.EventID == eventID {
            out = append(out, row)
        }
    }
    return out, nil
}

func (f *fakeLedger) TryMutate(context.Context, string, int, int, uint64) (*model.TicketInventory, error) {
    return nil, model.ErrVersionConflict
}

func (f *fakeLedger) AdjustCapacity(context.Context, string, int, uint64) (*model.TicketInventory, error) {
    return nil, model.ErrVersionConflict
}

func newStatusHandler() *StatusHandler {
    ledger := &fakeLedger{rows: map[string]*model.TicketInventory{
        "tt-1": {TicketTypeID: "tt-1", EventID: "ev-1", TotalQuantity: 100, SoldQuantity: 40, HeldQuantity: 10, Version: 7},
        "tt-2": {TicketTypeID: "tt-2", EventID: "ev-1", TotalQuantity: 50, SoldQuantity: 50, Version: 3},
    }}
    facade := inventory.NewStatusFacade(ledger, nil, config.FacadeConfig{
        LowStock:     10,
        VeryLowStock: 3,
    })
    return NewStatusHandler(facade)
}

func get(t *testing.T, handler echo.HandlerFunc, path, paramName, paramValue string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, path, nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if paramName != "" {
        c.SetParamNames(paramName)
        c.SetParamValues(paramValue)
    }
    require.NoError(t, handler(c))
    return rec
}

func TestGetStatusEndpoint(t *testing.T) {
    h := newStatusHandler()
    rec := get(t, h.GetStatus, "/v1/ticket-types/tt-1/status", "id", "tt-1")
    require.Equal(t, http.StatusOK, rec.Code)

    var st inventory.InventoryStatus
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
    assert.Equal(t, 50, st.Available)
    assert.False(t, st.SoldOut)
    assert.Equal(t, uint64(7), st.Version)
}

func TestGetStatusNotFound(t *testing.T) {
    h := newStatusHandler()
    rec := get(t, h.GetStatus, "/v1/ticket-types/nope/status", "id", "nope")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBulkStatusEndpoint(t *testing.T) {
    h := newStatusHandler()
    rec := get(t, h.GetBulkStatus, "/v1/status?ids=tt-1,nope,tt-2", "", "")
    require.Equal(t, http.StatusOK, rec.Code)

    var body struct {
        Statuses []inventory.InventoryStatus `json:"statuses"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Len(t, body.Statuses, 2)
}

func TestGetBulkStatusRequiresIDs(t *testing.T) {
    h := newStatusHandler()
    rec := get(t, h.GetBulkStatus, "/v1/status", "", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    rec = get(t, h.GetBulkStatus, "/v1/status?ids=,%20,", "", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEventStatusEndpoint(t *testing.T) {
    h := newStatusHandler()
    rec := get(t, h.GetEventStatus, "/v1/events/ev-1/status", "id", "ev-1")
    require.Equal(t, http.StatusOK, rec.Code)

    var es inventory.EventStatus
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &es))
    assert.Equal(t, 150, es.TotalCapacity)
    assert.Equal(t, 50, es.TotalAvailable)
    assert.Len(t, es.TicketTypes, 2)

    rec = get(t, h.GetEventStatus, "/v1/events/ev-none/status", "id", "ev-none")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}
