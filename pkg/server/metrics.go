package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	reloads  *prometheus.CounterVec
	info     *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viewercfg_http_requests_total",
			Help: "Total number of HTTP requests, by route and status code.",
		}, []string{"route", "code"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viewercfg_reloads_total",
			Help: "Total number of configuration reloads, by result (applied/unchanged/rejected).",
		}, []string{"result"}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "viewercfg_config_info",
			Help: "Digest of the viewer configuration currently served; always 1.",
		}, []string{"digest"}),
	}
	reg.MustRegister(m.requests, m.reloads, m.info)
	return m
}

func (m *metrics) published(digest string) {
	m.info.Reset()
	m.info.WithLabelValues(digest).Set(1)
}
