package controller

import "github.com/caps24escola/pixel-world/internal/events"

// Mount subscribes the controller's keydown and message listeners on d and
// returns the function that releases them. Mounting again without releasing
// first drops the previous registration, so listeners never accumulate.
func (c *Controller) Mount(d *events.Dispatcher) (release func()) {
	c.Unmount()

	keys := d.Subscribe(events.KindKeyDown, func(ev events.Event) { c.OnKeyDown(ev.Key) })
	messages := d.Subscribe(events.KindMessage, func(ev events.Event) { c.OnMapPointerEvent(ev.Data) })

	c.release = func() {
		keys.Release()
		messages.Release()
	}
	return c.Unmount
}

// Unmount releases the listeners acquired by Mount. It is safe to call when not mounted.
func (c *Controller) Unmount() {
	if c.release == nil {
		return
	}
	release := c.release
	c.release = nil
	release()
}
