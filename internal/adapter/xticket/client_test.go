package xticket_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openrun/config"
	"openrun/infras/otel/mocks"
	"openrun/internal/adapter"
	"openrun/internal/adapter/xticket"
	siteModel "openrun/internal/domains/site/model"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Engine.HTTPTimeoutSeconds = 5
	cfg.Engine.SessionTTLMinutes = 30

	return cfg
}

func testSite(baseURL string) *siteModel.CampingSite {
	return &siteModel.CampingSite{
		ID:         "b4f9c2ce-7a09-4f1e-9c2a-0a2b3c4d5e6f",
		Name:       "Saerim Auto Camping",
		SiteType:   siteModel.SiteTypeXTicket,
		BaseURL:    baseURL,
		ShopCode:   "622830018001",
		ShopEncode: "f5f32b56abe2",
	}
}

func newServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/web/main", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if _, ok := handlers["/Web/Member/MemberLogin.json"]; !ok {
		mux.HandleFunc("/Web/Member/MemberLogin.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"success":true}}`))
		})
	}
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestServerTime(t *testing.T) {
	t.Run("ReadsDateHeader", func(t *testing.T) {
		srv := newServer(t, nil)
		client := xticket.New(testSite(srv.URL), testConfig(), mocks.NewOtel())

		serverTime, err := client.ServerTime(context.Background())

		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), serverTime, 5*time.Second)
	})

	t.Run("MissingDateHeader", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// the implicit Date header is suppressed by setting it to nil
			w.Header()["Date"] = nil
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		client := xticket.New(testSite(srv.URL), testConfig(), mocks.NewOtel())

		_, err := client.ServerTime(context.Background())

		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := newServer(t, map[string]http.HandlerFunc{
			"/Web/Member/MemberLogin.json": func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "camper01", r.PostFormValue("member_id"))
				assert.Equal(t, "622830018001", r.PostFormValue("shopCode"))
				assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"data":{"success":true,"member_no":"10001"}}`))
			},
		})

		client := xticket.New(testSite(srv.URL), testConfig(), mocks.NewOtel())

		session, err := client.Login(context.Background(), "acc-1", "camper01", "secret")

		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "acc-1", session.AccountID)
		assert.Equal(t, "camper01", session.Username)
		assert.NotNil(t, session.Jar)
		assert.True(t, session.ExpiresAt.After(session.CreatedAt))
	})

	t.Run("RejectedCredential", func(t *testing.T) {
		srv := newServer(t, map[string]http.HandlerFunc{
			"/Web/Member/MemberLogin.json": func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"data":{"success":false,"message":"wrong password"}}`))
			},
		})

		client := xticket.New(testSite(srv.URL), testConfig(), mocks.NewOtel())

		_, err := client.Login(context.Background(), "acc-1", "camper01", "nope")

		assert.True(t, errors.Is(err, adapter.ErrInvalidCredential))
	})
}

func TestCheckAvailability(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/Web/Book/GetBookProduct010001.json": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "20260315", r.PostFormValue("start_date"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"bookProductList":[
				{"product_code":"00040009","product_name":"Gravel-09","select_yn":"1","sale_product_fee":30000},
				{"product_code":"00040010","product_name":"Gravel-10","select_yn":"0","sale_product_fee":0}
			]}}`))
		},
	})

	client := xticket.New(testSite(srv.URL), testConfig(), mocks.NewOtel())
	session := loginSession(t, client)

	seats, err := client.CheckAvailability(context.Background(), session, "2026-03-15")

	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.True(t, seats[0].Available)
	assert.Equal(t, "00040009", seats[0].ProductCode)
	assert.False(t, seats[1].Available)
}

func TestBook(t *testing.T) {
	tests := []struct {
		name       string
		response   func(w http.ResponseWriter)
		status     int
		wantNumber string
		wantErrIs  error
	}{
		{
			name: "Success",
			response: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{"data":{"success":true,"book_no":"B20260315-042"}}`))
			},
			wantNumber: "B20260315-042",
		},
		{
			name: "SoldOut",
			response: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{"error":{"message":"해당 좌석은 매진되었습니다"}}`))
			},
			wantErrIs: adapter.ErrSoldOut,
		},
		{
			name: "CaptchaChallenge",
			response: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{"error":{"message":"자동입력 방지 문자를 입력하세요"}}`))
			},
			wantErrIs: adapter.ErrCaptchaRequired,
		},
		{
			name:   "RateLimited",
			status: http.StatusTooManyRequests,
			response: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`slow down`))
			},
			wantErrIs: adapter.ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, map[string]http.HandlerFunc{
				"/Web/Book/Book010001.json": func(w http.ResponseWriter, r *http.Request) {
					require.NoError(t, r.ParseForm())
					assert.Equal(t, "0004", r.PostFormValue("product_group_code"))
					assert.Equal(t, "00040009", r.PostFormValue("product_code"))

					w.Header().Set("Content-Type", "application/json")
					if tt.status != 0 {
						w.WriteHeader(tt.status)
					}
					tt.response(w)
				},
			})

			client := xticket.New(testSite(srv.URL), testConfig(), mocks.NewOtel())
			session := loginSession(t, client)

			booking, err := client.Book(context.Background(), session, "2026-03-15", "00040009")

			if tt.wantErrIs != nil {
				assert.True(t, errors.Is(err, tt.wantErrIs))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, booking.ReservationNumber)
			assert.Equal(t, "00040009", booking.ProductCode)
		})
	}
}

func TestFactory(t *testing.T) {
	factory := xticket.NewFactory(testConfig(), mocks.NewOtel())

	t.Run("XTicketSite", func(t *testing.T) {
		client, err := factory.ForSite(testSite("https://camp.example.com"))

		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("UnknownSiteType", func(t *testing.T) {
		site := testSite("https://camp.example.com")
		site.SiteType = "interpark"

		_, err := factory.ForSite(site)

		assert.Error(t, err)
	})
}

func loginSession(t *testing.T, client adapter.Client) *adapter.Session {
	t.Helper()

	session, err := client.Login(context.Background(), "acc-1", "camper01", "secret")
	require.NoError(t, err)

	return session
}
