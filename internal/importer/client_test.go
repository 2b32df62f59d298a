package importer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload(orderID string) Payload {
	return Payload{
		APIKey: "k",
		Data:   []OrderData{{Master: Master{MaDonHang: orderID}}},
	}
}

func TestSubmitSuccess(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(time.Second, zerolog.Nop())
	res := c.Submit(context.Background(), srv.URL, testPayload("DH001"))

	assert.True(t, res.Success)
	assert.False(t, res.Retryable)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "DH001", got.Data[0].Master.MaDonHang)
}

func TestSubmitRetryableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"errorCode": "Mã hàng SP001 không tồn tại trong hệ thống",
		})
	}))
	defer srv.Close()

	c := NewClient(time.Second, zerolog.Nop())
	res := c.Submit(context.Background(), srv.URL, testPayload("DH001"))

	assert.False(t, res.Success)
	assert.True(t, res.Retryable)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "Mã hàng SP001 không tồn tại trong hệ thống", res.ErrorCode)
}

func TestSubmitDecodesErrorCodeOnSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"errorCode": "Chứng từ DH001 đã nhập."})
	}))
	defer srv.Close()

	c := NewClient(time.Second, zerolog.Nop())
	res := c.Submit(context.Background(), srv.URL, testPayload("DH001"))
	assert.True(t, res.Success)
	assert.Equal(t, "Chứng từ DH001 đã nhập.", res.ErrorCode)
}

func TestSubmitTransportErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	c := NewClient(time.Second, zerolog.Nop())
	res := c.Submit(context.Background(), srv.URL, testPayload("DH001"))

	assert.False(t, res.Success)
	assert.True(t, res.Retryable)
	assert.NotEmpty(t, res.Err)
}
