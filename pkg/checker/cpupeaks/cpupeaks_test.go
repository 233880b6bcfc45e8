package cpupeaks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/checkmate/pkg/check"
	"github.com/mfreeman451/checkmate/pkg/prediction"
)

func fp(v float64) *float64 {
	return &v
}

func testWindow() (from, until time.Time) {
	until = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	from = until.Add(-30 * 24 * time.Hour)

	return from, until
}

func seriesOf(from time.Time, values ...*float64) prediction.Series {
	return prediction.Series{From: from, Step: time.Minute, Values: values}
}

func TestRunGradesPeak(t *testing.T) {
	tests := []struct {
		name      string
		peak      float64
		warn      float64
		crit      float64
		wantState check.State
		wantNote  string
	}{
		{
			name:      "busy host is fine",
			peak:      87,
			warn:      10,
			crit:      5,
			wantState: check.StateOK,
		},
		{
			name:      "peak below warn",
			peak:      8,
			warn:      10,
			crit:      5,
			wantState: check.StateWarn,
			wantNote:  "peak was less than 10",
		},
		{
			name:      "peak below crit",
			peak:      3,
			warn:      10,
			crit:      5,
			wantState: check.StateCrit,
			wantNote:  "peak was less than 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			from, until := testWindow()

			store := prediction.NewMockSeriesStore(ctrl)
			store.EXPECT().
				GetSeries(gomock.Any(), "web-01", Category, "util", "MAX", from, until).
				Return(seriesOf(from, fp(1), fp(tt.peak), fp(2)), nil)

			res := New(store).Run(context.Background(), "web-01", Config{
				Warn:  tt.warn,
				Crit:  tt.crit,
				From:  from,
				Until: until,
			})

			assert.Equal(t, tt.wantState, res.State)
			assert.Contains(t, res.Summary, "CPU utilization peak of")

			if tt.wantNote != "" {
				assert.Contains(t, res.Summary, tt.wantNote)
			}

			require.Len(t, res.Perf, 1)
			assert.Equal(t, "peak", res.Perf[0].Label)
			assert.InDelta(t, tt.peak, res.Perf[0].Value, 0.001)
		})
	}
}

func TestRunReportsPeakTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	from, until := testWindow()

	store := prediction.NewMockSeriesStore(ctrl)
	store.EXPECT().
		GetSeries(gomock.Any(), "web-01", Category, "util", "MAX", from, until).
		Return(seriesOf(from, fp(12), fp(87), fp(34)), nil)

	res := New(store).Run(context.Background(), "web-01", Config{
		Warn: 10, Crit: 5, From: from, Until: until,
	})

	assert.Equal(t, check.StateOK, res.State)
	assert.Contains(t, res.Summary, from.Add(time.Minute).Format("2006-01-02 15:04:05"))
}

func TestRunFallsBackToSummedModes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	from, until := testWindow()
	store := prediction.NewMockSeriesStore(ctrl)

	store.EXPECT().
		GetSeries(gomock.Any(), "web-01", Category, "util", "MAX", from, until).
		Return(prediction.Series{}, errors.New("no such series"))

	// user 20 + system 10 + wait 5 peaks at 35.
	store.EXPECT().
		GetSeries(gomock.Any(), "web-01", Category, "user", "MAX", from, until).
		Return(seriesOf(from, fp(2), fp(20)), nil)
	store.EXPECT().
		GetSeries(gomock.Any(), "web-01", Category, "system", "MAX", from, until).
		Return(seriesOf(from, fp(1), fp(10)), nil)
	store.EXPECT().
		GetSeries(gomock.Any(), "web-01", Category, "wait", "MAX", from, until).
		Return(seriesOf(from, fp(0), fp(5)), nil)

	res := New(store).Run(context.Background(), "web-01", Config{
		Warn: 10, Crit: 5, From: from, Until: until,
	})

	assert.Equal(t, check.StateOK, res.State)
	assert.Contains(t, res.Summary, "35.00%")
}

func TestRegistrationPluginIsComplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := Registration(prediction.NewMockSeriesStore(ctrl))

	assert.NotNil(t, p.Parse)
	assert.NotNil(t, p.Discover)
	assert.NotNil(t, p.Check)
}

func TestPluginDiscoversOneItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := Registration(prediction.NewMockSeriesStore(ctrl))

	ds, err := p.Parse.Parse([]check.RecordSet{{Source: check.SourceAgent}})
	require.NoError(t, err)

	items := p.Discover.Discover(ds)
	require.Len(t, items, 1)
	assert.Equal(t, ItemKey, items[0].Key)
}

func TestPluginChecksItemHost(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := prediction.NewMockSeriesStore(ctrl)
	store.EXPECT().
		GetSeries(gomock.Any(), "web-07", Category, "util", "MAX", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, _, _ string, from, until time.Time) (prediction.Series, error) {
			assert.InDelta(t, DefaultWindow.Seconds(), until.Sub(from).Seconds(), 1)

			return seriesOf(from, fp(55)), nil
		})

	p := Registration(store)

	res, err := p.Check.Check(context.Background(), check.ServiceItem{Key: ItemKey, Host: "web-07"}, check.Dataset{})
	require.NoError(t, err)
	assert.Equal(t, check.StateOK, res.State)
}

func TestPluginHonorsRetrievalTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := prediction.NewMockSeriesStore(ctrl)
	store.EXPECT().
		GetSeries(gomock.Any(), "web-01", Category, gomock.Any(), "MAX", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _, _, _ string, _, _ time.Time) (prediction.Series, error) {
			<-ctx.Done()

			return prediction.Series{}, ctx.Err()
		}).
		Times(2)

	p := Registration(store, prediction.WithTimeout(20*time.Millisecond))

	done := make(chan check.Result, 1)

	go func() {
		res, _ := p.Check.Check(context.Background(), check.ServiceItem{Key: ItemKey, Host: "web-01"}, check.Dataset{})
		done <- res
	}()

	select {
	case res := <-done:
		assert.Equal(t, check.StateOK, res.State)
		assert.Equal(t, "no CPU utilization data found in the selected time range", res.Summary)
	case <-time.After(2 * time.Second):
		t.Fatal("retrieval was not bounded by the configured timeout")
	}
}

func TestRunNoHistoryIsOK(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	from, until := testWindow()
	store := prediction.NewMockSeriesStore(ctrl)

	// Retrieval stops at the first failed fallback component.
	store.EXPECT().
		GetSeries(gomock.Any(), "web-01", Category, gomock.Any(), "MAX", from, until).
		Return(prediction.Series{}, errors.New("no such series")).
		Times(2)

	res := New(store).Run(context.Background(), "web-01", Config{
		Warn: 10, Crit: 5, From: from, Until: until,
	})

	assert.Equal(t, check.StateOK, res.State)
	assert.Equal(t, "no CPU utilization data found in the selected time range", res.Summary)
	assert.Empty(t, res.Perf)
}
