// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_monotonic(t *testing.T) {
	c := New()
	first := c.NowMicros()
	time.Sleep(2 * time.Millisecond)
	assert.True(t, c.NowMicros() > first)
	assert.True(t, c.NowMillis() >= 2)
}

func Test_MicrosSinceLastCall(t *testing.T) {
	c := New()
	c.MicrosSinceLastCall()
	time.Sleep(3 * time.Millisecond)
	delta := c.MicrosSinceLastCall()
	assert.True(t, delta >= 3000)

	// the second delta only covers the time after the previous call
	assert.True(t, c.MicrosSinceLastCall() < delta)
}
