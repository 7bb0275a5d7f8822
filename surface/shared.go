// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package surface

// Factory creates the surface on first use.
type Factory func() (*Surface, error)

// Holder owns the single surface of the process. It is not safe for
// concurrent use; all calls are expected from the control loop.
type Holder struct {
	factory  Factory
	surface  *Surface
	released bool
}

func NewHolder(factory Factory) *Holder {
	return &Holder{factory: factory}
}

// Get returns the surface, creating it if needed.
func (h *Holder) Get() (*Surface, error) {
	if h.surface != nil {
		return h.surface, nil
	}
	if h.released {
		return nil, ErrReleased
	}
	s, err := h.factory()
	if err != nil {
		return nil, err
	}
	h.surface = s
	return s, nil
}

// Exists reports whether the surface has been created, without creating it.
func (h *Holder) Exists() bool {
	return h.surface != nil
}

// Release destroys the surface. Later calls do nothing and Get fails.
func (h *Holder) Release() error {
	h.released = true
	if h.surface == nil {
		return nil
	}
	s := h.surface
	h.surface = nil
	return s.destroy()
}
