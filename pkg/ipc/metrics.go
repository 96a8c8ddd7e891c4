package ipc

import (
	"io"
	"net/http"
	"sync/atomic"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metrics counts live-update traffic. The zero value is ready to use.
type Metrics struct {
	connections  atomic.Uint64
	active       atomic.Int64
	opened       atomic.Uint64
	appends      atomic.Uint64
	ignored      atomic.Uint64
	decodeErrors atomic.Uint64
	appended     atomic.Uint64
}

func (m *Metrics) connectionOpened() {
	m.connections.Add(1)
	m.active.Add(1)
}

func (m *Metrics) connectionClosed() {
	m.active.Add(-1)
}

func (m *Metrics) message(k Kind) {
	switch k {
	case KindOpen:
		m.opened.Add(1)
	case KindAppend:
		m.appends.Add(1)
	default:
		m.ignored.Add(1)
	}
}

func (m *Metrics) decodeError() {
	m.decodeErrors.Add(1)
}

// AddAppended records n values appended to viewers.
func (m *Metrics) AddAppended(n int) {
	if n > 0 {
		m.appended.Add(uint64(n))
	}
}

func counter(name, help string, v uint64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{
			Counter: &dto.Counter{Value: proto.Float64(float64(v))},
		}},
	}
}

func (m *Metrics) Families() []*dto.MetricFamily {
	messages := &dto.MetricFamily{
		Name: proto.String("dataviewer_ipc_messages_total"),
		Help: proto.String("Messages received on the live-update socket, by kind."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, kv := range []struct {
		kind Kind
		v    uint64
	}{
		{KindOpen, m.opened.Load()},
		{KindAppend, m.appends.Load()},
		{KindIgnore, m.ignored.Load()},
	} {
		messages.Metric = append(messages.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: proto.String("kind"), Value: proto.String(kv.kind.String())}},
			Counter: &dto.Counter{Value: proto.Float64(float64(kv.v))},
		})
	}

	return []*dto.MetricFamily{
		counter("dataviewer_ipc_connections_total", "Connections accepted on the live-update socket.", m.connections.Load()),
		{
			Name: proto.String("dataviewer_ipc_connections_active"),
			Help: proto.String("Connections currently open."),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{
				Gauge: &dto.Gauge{Value: proto.Float64(float64(m.active.Load()))},
			}},
		},
		messages,
		counter("dataviewer_ipc_decode_errors_total", "Messages that were not valid documents.", m.decodeErrors.Load()),
		counter("dataviewer_appended_values_total", "Values appended to open views.", m.appended.Load()),
	}
}

// WriteText writes the metrics in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range m.Families() {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves /metrics and /healthz.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", m.handleMetrics)
	mux.HandleFunc("/healthz", handleHealthz)
	return mux
}

func (m *Metrics) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_ = m.WriteText(w)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
