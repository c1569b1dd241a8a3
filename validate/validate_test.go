package validate

import "testing"

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"+998901234567", true},
		{"  +998901234567  ", true},
		{"+99890123456", false},   // 8 digits
		{"+9989012345678", false}, // 10 digits
		{"998901234567", false},   // missing plus
		{"+7 900 123 45 67", false},
		{"+998 90 123 45 67", false}, // spaces inside
		{"", false},
		{"hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Phone(tt.input); got != tt.want {
				t.Errorf("Phone(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBirthDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"15-06-1995", true},
		{"1-1-2000", true},
		{"31-12-1900", true},
		{"  15-06-1995  ", true},
		{"00-06-1995", false},
		{"32-06-1995", false},
		{"15-00-1995", false},
		{"15-13-1995", false},
		{"15-06-1899", false},
		{"15-06-3000", false},
		{"1995-06-15", false}, // wrong order
		{"15/06/1995", false},
		{"30-04-2010abc", false}, // trailing garbage
		{"30-04-2010 xyz", false},
		{"30-04-2010-", false}, // four parts
		{"30-04-2010-01", false},
		{"30-04-20.10", false},
		{"", false},
		{"yesterday", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := BirthDate(tt.input); got != tt.want {
				t.Errorf("BirthDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGroupLink(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://t.me/garajhub", true},
		{"t.me/+AbCdEf123", true},
		{"https://telegram.me/somegroup", true},
		{"https://example.com/group", false},
		{"telegram group", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := GroupLink(tt.input); got != tt.want {
				t.Errorf("GroupLink(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	if !Text("hello") {
		t.Error("Text(\"hello\") = false, want true")
	}
	if Text("") {
		t.Error("Text(\"\") = true, want false")
	}
	if Text("   \n\t ") {
		t.Error("Text(whitespace) = true, want false")
	}
}
