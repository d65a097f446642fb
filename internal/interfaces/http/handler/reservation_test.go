package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStock(t *testing.T, env *testEnv, locationID uuid.UUID, quantity int64) {
	t.Helper()
	body := fmt.Sprintf(`{"product_color_id":"SKU-RED","location_id":%q,"quantity":%d}`, locationID, quantity)
	w := env.do(http.MethodPost, "/api/v1/stock", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestReservationHandler_ReserveFull(t *testing.T) {
	env := newTestEnv(t)
	_, _, loc := env.seedHierarchy(t, 1000)
	seedStock(t, env, loc.ID, 50)

	w := env.do(http.MethodPost, "/api/v1/reservations",
		`{"order_id":1001,"product_color_id":"SKU-RED","quantity":30}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeResponse(t, w.Body.Bytes())
	assert.True(t, resp.Success)
	assert.EqualValues(t, 30, dataField(t, resp, "total_reserved"))
	assert.EqualValues(t, 0, dataField(t, resp, "shortfall"))

	lines, ok := dataField(t, resp, "lines").([]interface{})
	require.True(t, ok)
	assert.Len(t, lines, 1)
}

func TestReservationHandler_ReservePartial(t *testing.T) {
	env := newTestEnv(t)
	_, _, loc := env.seedHierarchy(t, 1000)
	seedStock(t, env, loc.ID, 10)

	w := env.do(http.MethodPost, "/api/v1/reservations",
		`{"order_id":1002,"product_color_id":"SKU-RED","quantity":25}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeResponse(t, w.Body.Bytes())
	assert.EqualValues(t, 10, dataField(t, resp, "total_reserved"))
	assert.EqualValues(t, 15, dataField(t, resp, "shortfall"))
}

func TestReservationHandler_ReserveNothingAvailable(t *testing.T) {
	env := newTestEnv(t)
	env.seedHierarchy(t, 1000)

	w := env.do(http.MethodPost, "/api/v1/reservations",
		`{"order_id":1003,"product_color_id":"SKU-RED","quantity":5}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeResponse(t, w.Body.Bytes())
	assert.EqualValues(t, 0, dataField(t, resp, "total_reserved"))
	assert.EqualValues(t, 5, dataField(t, resp, "shortfall"))
}

func TestReservationHandler_ReserveValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/reservations",
		`{"order_id":0,"product_color_id":"SKU-RED","quantity":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/v1/reservations",
		`{"order_id":1,"product_color_id":"SKU-RED","quantity":5,"preferred_warehouse_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationHandler_ReleaseReturnsStock(t *testing.T) {
	env := newTestEnv(t)
	_, _, loc := env.seedHierarchy(t, 1000)
	seedStock(t, env, loc.ID, 40)

	w := env.do(http.MethodPost, "/api/v1/reservations",
		`{"order_id":2001,"product_color_id":"SKU-RED","quantity":15}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, "/api/v1/stock/global-check?product_color_id=SKU-RED&required=30", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w.Body.Bytes())
	assert.Equal(t, false, dataField(t, resp, "sufficient"))

	w = env.do(http.MethodDelete, "/api/v1/reservations/2001", "")
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/stock/global-check?product_color_id=SKU-RED&required=40", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w.Body.Bytes())
	assert.Equal(t, true, dataField(t, resp, "sufficient"))
}

func TestReservationHandler_ReleaseUnknownOrderIsNoOp(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodDelete, "/api/v1/reservations/999999", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestReservationHandler_ReleaseBadOrderID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodDelete, "/api/v1/reservations/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, "/api/v1/reservations/-3", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
