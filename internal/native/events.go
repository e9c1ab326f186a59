package native

import "fmt"

// EventKind enumerates the window and display events a backend reports.
type EventKind int

const (
	EventShown EventKind = iota + 1
	EventHidden
	EventExposed
	EventOccluded
	EventMoved
	EventResized
	EventPixelSizeChanged
	EventMinimized
	EventMaximized
	EventRestored
	EventMouseEnter
	EventMouseLeave
	EventFocusGained
	EventFocusLost
	EventDisplayChanged
	EventDisplayScaleChanged
	EventSafeAreaChanged
	EventEnterFullscreen
	EventLeaveFullscreen
	EventCloseRequested
	EventHitTest

	EventDisplayAdded
	EventDisplayRemoved
	EventDisplayMoved
	EventDisplayOrientation
	EventDisplayDesktopModeChanged
	EventDisplayCurrentModeChanged
	EventDisplayContentScaleChanged
)

var eventNames = map[EventKind]string{
	EventShown:                      "shown",
	EventHidden:                     "hidden",
	EventExposed:                    "exposed",
	EventOccluded:                   "occluded",
	EventMoved:                      "moved",
	EventResized:                    "resized",
	EventPixelSizeChanged:           "pixel_size_changed",
	EventMinimized:                  "minimized",
	EventMaximized:                  "maximized",
	EventRestored:                   "restored",
	EventMouseEnter:                 "mouse_enter",
	EventMouseLeave:                 "mouse_leave",
	EventFocusGained:                "focus_gained",
	EventFocusLost:                  "focus_lost",
	EventDisplayChanged:             "display_changed",
	EventDisplayScaleChanged:        "display_scale_changed",
	EventSafeAreaChanged:            "safe_area_changed",
	EventEnterFullscreen:            "enter_fullscreen",
	EventLeaveFullscreen:            "leave_fullscreen",
	EventCloseRequested:             "close_requested",
	EventHitTest:                    "hit_test",
	EventDisplayAdded:               "display_added",
	EventDisplayRemoved:             "display_removed",
	EventDisplayMoved:               "display_moved",
	EventDisplayOrientation:         "display_orientation",
	EventDisplayDesktopModeChanged:  "display_desktop_mode_changed",
	EventDisplayCurrentModeChanged:  "display_current_mode_changed",
	EventDisplayContentScaleChanged: "display_content_scale_changed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// IsDisplayEvent reports whether the kind concerns display topology rather
// than a single window.
func (k EventKind) IsDisplayEvent() bool {
	return k >= EventDisplayAdded && k <= EventDisplayContentScaleChanged
}

// Event is one entry drained from a backend's event queue.
type Event struct {
	Kind    EventKind
	Window  Handle
	Display DisplayID
}

func (e Event) String() string {
	if e.Kind.IsDisplayEvent() {
		return fmt.Sprintf("%s(display=%d)", e.Kind, e.Display)
	}
	return fmt.Sprintf("%s(window=%d)", e.Kind, e.Window)
}
