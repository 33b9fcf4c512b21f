package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
)

// RPCMetrics counts and times RPCs by procedure and result code.
type RPCMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRPCMetrics creates the collectors and registers them with registerer.
func NewRPCMetrics(registerer prometheus.Registerer) *RPCMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &RPCMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settleup_rpc_requests_total",
				Help: "RPCs handled, by procedure and code.",
			},
			[]string{"procedure", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "settleup_rpc_duration_seconds",
				Help:    "RPC handling time.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
	}
	registerer.MustRegister(m.requests, m.duration)
	return m
}

// Interceptor records every unary call.
func (m *RPCMetrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			procedure := req.Spec().Procedure
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.requests.WithLabelValues(procedure, code).Inc()
			m.duration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}
