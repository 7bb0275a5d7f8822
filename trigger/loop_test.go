// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoopOrder(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	defer loop.Quit()

	result := make(chan []int, 1)
	var seen []int
	for i := 0; i < 100; i++ {
		i := i
		require.True(t, loop.Post(func() {
			seen = append(seen, i)
			if i == 99 {
				result <- seen
			}
		}))
	}

	select {
	case got := <-result:
		require.Len(t, got, 100)
		for i, v := range got {
			assert.Equal(t, i, v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}
}

func Test_LoopPostFromLoop(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	defer loop.Quit()

	done := make(chan struct{})
	loop.Post(func() {
		loop.Post(func() {
			close(done)
		})
	})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}
}

func Test_LoopAfterFunc(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	defer loop.Quit()

	fired := make(chan struct{})
	start := time.Now()
	loop.AfterFunc(20*time.Millisecond, func() {
		close(fired)
	})
	select {
	case <-fired:
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}
}

func Test_LoopQuit(t *testing.T) {
	loop := NewLoop()
	go loop.Run()

	ran := make(chan struct{}, 1)
	loop.Post(func() {
		loop.Quit()
		loop.Post(func() {
			ran <- struct{}{}
		})
	})

	select {
	case <-loop.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}
	assert.False(t, loop.Post(func() {}))
	assert.Empty(t, ran)

	// quitting twice is fine
	loop.Quit()
}
