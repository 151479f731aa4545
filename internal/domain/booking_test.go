package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanCancelAt(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		journeyAt time.Time
		want      bool
	}{
		{"Journey a week away", now.Add(7 * 24 * time.Hour), true},
		{"Just over the window", now.Add(CancellationWindow + time.Minute), true},
		// Ровно на границе окна отмена уже запрещена
		{"Exactly at the window boundary", now.Add(CancellationWindow), false},
		{"Inside the window", now.Add(10 * time.Hour), false},
		{"Journey already departed", now.Add(-time.Hour), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanCancelAt(now, tc.journeyAt))
		})
	}
}
