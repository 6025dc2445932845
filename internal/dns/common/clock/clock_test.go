package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}

	// Capture time before and after the clock call
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	// The clock's time should be between our before/after measurements
	assert.False(t, now.Before(before), "clock time %v is before measurement time %v", now, before)
	assert.False(t, now.After(after), "clock time %v is after measurement time %v", now, after)
}

func TestRealClock_Now_Multiple_Calls(t *testing.T) {
	clock := RealClock{}

	first := clock.Now()
	time.Sleep(1 * time.Millisecond) // Small delay to ensure time difference
	second := clock.Now()

	assert.True(t, second.After(first), "second call %v should be after first call %v", second, first)
}

func TestMockClock_Now(t *testing.T) {
	fixedTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: fixedTime}

	now := clock.Now()

	assert.True(t, now.Equal(fixedTime), "expected %v, got %v", fixedTime, now)
}

func TestMockClock_Now_Consistent(t *testing.T) {
	fixedTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: fixedTime}

	first := clock.Now()
	second := clock.Now()

	assert.True(t, first.Equal(second), "mock clock should return consistent time: first=%v, second=%v", first, second)
}

func TestMockClock_Advance(t *testing.T) {
	initialTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: initialTime}

	// Test advancing by various durations
	testCases := []struct {
		name     string
		duration time.Duration
		expected time.Time
	}{
		{
			name:     "advance by 1 hour",
			duration: 1 * time.Hour,
			expected: initialTime.Add(1 * time.Hour),
		},
		{
			name:     "advance by 30 minutes more",
			duration: 30 * time.Minute,
			expected: initialTime.Add(1*time.Hour + 30*time.Minute),
		},
		{
			name:     "advance by 1 microsecond",
			duration: 1 * time.Microsecond,
			expected: initialTime.Add(1*time.Hour + 30*time.Minute + 1*time.Microsecond),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clock.Advance(tc.duration)
			now := clock.Now()

			assert.True(t, now.Equal(tc.expected), "expected %v, got %v", tc.expected, now)
		})
	}
}

func TestMockClock_Advance_Negative_Duration(t *testing.T) {
	initialTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: initialTime}

	// Advance backwards
	clock.Advance(-1 * time.Hour)
	now := clock.Now()
	expected := initialTime.Add(-1 * time.Hour)

	assert.True(t, now.Equal(expected), "expected %v, got %v", expected, now)
}

func TestMockClock_Advance_Zero_Duration(t *testing.T) {
	initialTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: initialTime}

	// Advance by zero
	clock.Advance(0)
	now := clock.Now()

	assert.True(t, now.Equal(initialTime), "expected %v, got %v", initialTime, now)
}

func TestClock_Interface_Compliance(t *testing.T) {
	// Test that both implementations satisfy the Clock interface
	var _ Clock = RealClock{}
	var _ Clock = &MockClock{}
}

func TestMockClock_Simulation(t *testing.T) {
	// Simulate a realistic scenario where we need to test time-dependent behavior
	startTime := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: startTime}

	// Simulate a day's worth of operations
	events := []struct {
		description  string
		advance      time.Duration
		expectedHour int
	}{
		{"Start of day", 0, 9},
		{"Mid-morning", 2 * time.Hour, 11},
		{"Lunch time", 2 * time.Hour, 13},
		{"Afternoon", 3 * time.Hour, 16},
		{"End of day", 2 * time.Hour, 18},
	}

	for _, event := range events {
		t.Run(event.description, func(t *testing.T) {
			if event.advance > 0 {
				clock.Advance(event.advance)
			}

			now := clock.Now()
			assert.Equal(t, event.expectedHour, now.Hour(), "time: %v", now)
		})
	}
}

func TestMockClock_TTL_Simulation(t *testing.T) {
	// Simulate DNS record TTL expiration testing against the package's own
	// Live/Remaining helpers, the same ones CacheEntry delegates to.
	startTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: startTime}

	ttl := uint32(300)

	testPoints := []struct {
		name              string
		advance           time.Duration
		live              bool
		expectedRemaining time.Duration
	}{
		{"immediately", 0, true, 300 * time.Second},
		{"halfway through TTL", 150 * time.Second, true, 150 * time.Second},
		{"just before expiry", 299 * time.Second, true, 1 * time.Second},
		{"at expiry", 300 * time.Second, false, 0},
		{"after expiry", 301 * time.Second, false, 0},
		{"long after expiry", 600 * time.Second, false, 0},
	}

	for _, tp := range testPoints {
		t.Run(tp.name, func(t *testing.T) {
			clock.CurrentTime = startTime
			clock.Advance(tp.advance)

			now := clock.Now()
			assert.Equal(t, tp.live, Live(now, startTime, ttl), "Live at %v (advanced %v)", now, tp.advance)
			assert.Equal(t, tp.expectedRemaining, Remaining(now, startTime, ttl), "Remaining at %v (advanced %v)", now, tp.advance)
		})
	}
}

func TestRemaining_NeverNegative(t *testing.T) {
	insertedAt := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	now := insertedAt.Add(time.Hour)

	assert.Equal(t, time.Duration(0), Remaining(now, insertedAt, 10))
}

func TestMockClock_Concurrent_Access(t *testing.T) {
	// Test that MockClock can be safely used concurrently for reads
	// Note: This doesn't test concurrent writes (Advance) as that would require synchronization
	initialTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: initialTime}

	done := make(chan bool, 10)

	// Start 10 goroutines that read the time
	for i := 0; i < 10; i++ {
		go func() {
			now := clock.Now()
			assert.True(t, now.Equal(initialTime), "expected %v, got %v", initialTime, now)
			done <- true
		}()
	}

	// Wait for all goroutines to complete
	for i := 0; i < 10; i++ {
		<-done
	}
}
