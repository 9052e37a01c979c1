package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodWindow(t *testing.T) {
	tests := []struct {
		period   string
		lookback time.Duration
		bucket   time.Duration
	}{
		{PeriodLast24h, 24 * time.Hour, time.Hour},
		{PeriodLast7d, 7 * 24 * time.Hour, 24 * time.Hour},
		{PeriodLast30d, 30 * 24 * time.Hour, 24 * time.Hour},
		{"bogus", 24 * time.Hour, time.Hour},
		{"", 24 * time.Hour, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			lookback, bucket := PeriodWindow(tt.period)
			assert.Equal(t, tt.lookback, lookback)
			assert.Equal(t, tt.bucket, bucket)
		})
	}
}
