package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "staybook"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of handled HTTP requests by method and status.",
		},
		[]string{"method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of handled HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	placesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "places_created_total",
			Help:      "Count of places created.",
		},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Count of bookings created.",
		},
	)

	uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Count of stored photo files by source.",
		},
		[]string{"source"},
	)
)

// Register 注册全部指标，可重复调用
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, placesCreated, bookingsCreated, uploads)
	})
}

// ObserveRequest 记录一次请求的状态码与耗时
func ObserveRequest(method string, status int, latency time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(latency.Seconds())
}

func IncPlaceCreated() {
	placesCreated.Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

// AddUploads source 取值 link 或 multipart
func AddUploads(source string, n int) {
	uploads.WithLabelValues(source).Add(float64(n))
}

// Serve 在独立端口暴露 /metrics，监听成功后立即返回，ctx 结束时关闭
func Serve(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			hlog.Errorf("metrics server error: %v", err)
		}
	}()

	hlog.Infof("metrics server listening on %s", ln.Addr())
	return ln.Addr(), nil
}
