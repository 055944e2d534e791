//go:build !windows

package alert

func (popup *Window) keepOnTop() {}
