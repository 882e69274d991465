package log

import "testing"

func TestDirectionString(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{DirectionIn, "IN"},
		{DirectionOut, "OUT"},
		{Direction(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestLayerString(t *testing.T) {
	tests := []struct {
		l    Layer
		want string
	}{
		{LayerMdib, "MDIB"},
		{LayerSco, "SCO"},
		{LayerWire, "WIRE"},
		{Layer(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.l.String(); got != tt.want {
			t.Errorf("Layer(%d).String() = %q, want %q", tt.l, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		c    Category
		want string
	}{
		{CategoryInvocation, "INVOCATION"},
		{CategoryCommit, "COMMIT"},
		{CategoryMessage, "MESSAGE"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestMessageTypeString(t *testing.T) {
	tests := []struct {
		m    MessageType
		want string
	}{
		{MessageTypeRequest, "REQUEST"},
		{MessageTypeResponse, "RESPONSE"},
		{MessageTypeReport, "REPORT"},
		{MessageType(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("MessageType(%d).String() = %q, want %q", tt.m, got, tt.want)
		}
	}
}

// Values are persisted in log files and must stay stable.
func TestEnumValues(t *testing.T) {
	if LayerMdib != 0 || LayerSco != 1 || LayerWire != 2 {
		t.Error("Layer values changed")
	}
	if CategoryInvocation != 0 || CategoryCommit != 1 || CategoryMessage != 2 || CategoryError != 3 {
		t.Error("Category values changed")
	}
	if MessageTypeRequest != 0 || MessageTypeResponse != 1 || MessageTypeReport != 2 {
		t.Error("MessageType values changed")
	}
}
