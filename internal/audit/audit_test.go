package audit

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memorySink struct {
	entries []domain.ComplianceLog
	err     error
}

func (s *memorySink) Name() string { return "memory" }

func (s *memorySink) Write(_ context.Context, entry domain.ComplianceLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecorderFansOutAndSwallowsSinkErrors(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	good := &memorySink{}
	bad := &memorySink{err: errors.New("disk full")}
	r := NewRecorder(zap.New(core), bad, good)

	var observed []string
	r.OnEvent(func(l domain.ComplianceLog) { observed = append(observed, l.EventType) })

	id := r.LogEvent(context.Background(), "s1", domain.EventSessionStart, "started", "", map[string]any{"k": "v"})
	require.NotEmpty(t, id)

	require.Len(t, good.entries, 1)
	assert.Equal(t, id, good.entries[0].ID)
	assert.Equal(t, domain.SeverityLow, good.entries[0].Severity)
	assert.Equal(t, []string{domain.EventSessionStart}, observed)
	assert.Equal(t, 1, logs.FilterMessage("failed to write audit event").Len())

	r.LogEvent(context.Background(), "", domain.EventBiasDetection, "job text", domain.SeverityMedium, nil)
	assert.Len(t, r.SessionLogs("s1"), 1)
	assert.Len(t, good.entries, 2)

	r.ClearSession("s1")
	assert.Empty(t, r.SessionLogs("s1"))
}

func TestRecorderMetadataIsCopied(t *testing.T) {
	t.Parallel()

	r := NewRecorder(nil)
	meta := map[string]any{"score": 10}
	r.LogEvent(context.Background(), "s1", domain.EventAnswerSubmission, "answer", domain.SeverityLow, meta)
	meta["score"] = 99

	assert.Equal(t, 10, r.SessionLogs("s1")[0].Metadata["score"])
}

func TestComplianceReport(t *testing.T) {
	t.Parallel()

	r := NewRecorder(nil)
	ctx := context.Background()
	r.LogEvent(ctx, "s1", domain.EventSessionStart, "start", domain.SeverityLow, nil)
	r.LogEvent(ctx, "s1", domain.EventIntegrityAnalysis, "integrity", domain.SeverityHigh, nil)
	r.LogEvent(ctx, "s1", domain.EventAnswerSubmission, "answer", domain.SeverityLow, nil)
	r.LogEvent(ctx, "s1", domain.EventSessionEnd, "end", domain.SeverityLow, nil)

	report, err := r.ComplianceReport("s1")
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalEvents)
	assert.Equal(t, 50.0, report.ComplianceScore)
	assert.Equal(t, RiskHigh, report.RiskLevel)
	assert.Equal(t, 1, report.Severity[domain.SeverityHigh])
	assert.Equal(t, 0, report.Severity[domain.SeverityMedium])
	assert.Contains(t, report.Recommendations, "Review high severity events - immediate attention required")
	assert.Len(t, report.Timeline, 4)

	_, err = r.ComplianceReport("unknown")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestReportRiskBands(t *testing.T) {
	t.Parallel()

	now := time.Now()
	build := func(high, low int) ComplianceReport {
		logs := make([]domain.ComplianceLog, 0, high+low)
		for i := 0; i < high; i++ {
			logs = append(logs, domain.ComplianceLog{EventType: "x", Severity: domain.SeverityHigh, Timestamp: now})
		}
		for i := 0; i < low; i++ {
			logs = append(logs, domain.ComplianceLog{EventType: "x", Severity: domain.SeverityLow, Timestamp: now})
		}
		report, err := BuildReport("s", logs, now)
		require.NoError(t, err)
		return report
	}

	assert.Equal(t, RiskLow, build(0, 10).RiskLevel)
	assert.Equal(t, RiskMedium, build(1, 9).RiskLevel)
	assert.Equal(t, RiskHigh, build(2, 8).RiskLevel)
	assert.Equal(t, 0.0, build(10, 0).ComplianceScore)
}

func TestExport(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	logs := []domain.ComplianceLog{{
		ID: "1", SessionID: "s1", EventType: domain.EventSessionStart,
		Description: "started, with comma", Severity: domain.SeverityLow,
		Metadata: map[string]any{"a": 1.0}, Timestamp: ts,
	}}

	data, err := Export(logs, "json")
	require.NoError(t, err)
	var decoded []domain.ComplianceLog
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, logs, decoded)

	data, err = Export(logs, "CSV")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "started, with comma", records[1][3])

	_, err = Export(logs, "xml")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFileSinkPurge(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "audit.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	now := time.Now().UTC()
	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, domain.ComplianceLog{ID: "old", EventType: "x", Severity: domain.SeverityLow, Timestamp: now.Add(-48 * time.Hour)}))
	require.NoError(t, sink.Write(ctx, domain.ComplianceLog{ID: "new", EventType: "x", Severity: domain.SeverityLow, Timestamp: now}))

	removed, err := sink.Purge(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, sink.Write(ctx, domain.ComplianceLog{ID: "newer", EventType: "x", Severity: domain.SeverityLow, Timestamp: now}))

	logs, err := sink.ReadAll()
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "new", logs[0].ID)
	assert.Equal(t, "newer", logs[1].ID)
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Now().UTC()
	store.now = fixedClock(now)
	r := NewRecorder(nil, store)
	ctx := context.Background()

	for i, sev := range []domain.Severity{domain.SeverityLow, domain.SeverityHigh, domain.SeverityMedium} {
		r.now = fixedClock(now.Add(time.Duration(i) * time.Minute))
		r.LogEvent(ctx, "s1", domain.EventIntegrityAnalysis, fmt.Sprintf("event %d", i), sev, map[string]any{"i": i})
	}
	r.now = fixedClock(now.Add(-40 * 24 * time.Hour))
	r.LogEvent(ctx, "s2", domain.EventSessionStart, "old", domain.SeverityLow, nil)

	logs, err := store.Query(ctx, Filter{SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "event 0", logs[0].Description)
	assert.Equal(t, 1.0, logs[1].Metadata["i"])

	high, err := store.HighSeverity(ctx, time.Hour)
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, domain.SeverityHigh, high[0].Severity)

	latest, err := store.Query(ctx, Filter{EventType: domain.EventIntegrityAnalysis, Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "event 2", latest[0].Description)

	stats, err := store.Statistics(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEvents)
	assert.Equal(t, 33.33, stats.HighSeverityRate)

	removed, err := r.Purge(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Empty(t, r.SessionLogs("s2"))

	all, err := store.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRedisSink(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	sink := NewRedisSinkFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	t.Cleanup(func() { _ = sink.Close() })

	ctx := context.Background()
	require.NoError(t, sink.Ping(ctx))

	r := NewRecorder(nil, sink)
	r.LogEvent(ctx, "s1", domain.EventSessionStart, "start", domain.SeverityLow, nil)
	r.LogEvent(ctx, "s1", domain.EventSessionEnd, "end", domain.SeverityLow, nil)
	r.LogEvent(ctx, "", domain.EventBiasDetection, "bias", domain.SeverityMedium, nil)

	logs, err := sink.SessionLogs(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.EventSessionStart, logs[0].EventType)

	assert.Equal(t, time.Hour, mr.TTL(redisSessionPrefix+"s1"))

	recent, err := sink.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, domain.EventBiasDetection, recent[0].EventType)
}

func TestStatisticsTrend(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	day := func(offset, high, low int) []domain.ComplianceLog {
		var logs []domain.ComplianceLog
		for i := 0; i < high; i++ {
			logs = append(logs, domain.ComplianceLog{EventType: "x", Severity: domain.SeverityHigh, Timestamp: base.AddDate(0, 0, offset)})
		}
		for i := 0; i < low; i++ {
			logs = append(logs, domain.ComplianceLog{EventType: "x", Severity: domain.SeverityLow, Timestamp: base.AddDate(0, 0, offset)})
		}
		return logs
	}

	var worse, better []domain.ComplianceLog
	for i := 0; i < 6; i++ {
		if i < 3 {
			worse = append(worse, day(i, 0, 1)...)
			better = append(better, day(i, 3, 1)...)
		} else {
			worse = append(worse, day(i, 3, 1)...)
			better = append(better, day(i, 0, 1)...)
		}
	}

	assert.Equal(t, TrendDeteriorating, ComputeStatistics(worse, 7).Trend)
	assert.Equal(t, TrendImproving, ComputeStatistics(better, 7).Trend)
	assert.Equal(t, TrendInsufficient, ComputeStatistics(day(0, 1, 1), 7).Trend)
	var flat []domain.ComplianceLog
	for i := 0; i < 4; i++ {
		flat = append(flat, day(i, 1, 0)...)
	}
	assert.Equal(t, TrendStable, ComputeStatistics(flat, 7).Trend)
}
