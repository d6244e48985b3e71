package template

import (
	"strings"
	"testing"
)

func TestTranslateType(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "String", want: "string"},
		{in: "&str", want: "string"},
		{in: "bool", want: "bool"},
		{in: "i32", want: "int32"},
		{in: "usize", want: "uint"},
		{in: "f64", want: "float64"},
		{in: "Vec<String>", want: "[]string"},
		{in: "Option<i32>", want: "*int32"},
		{in: "HashMap<String, Vec<u8>>", want: "map[string][]uint8"},
		{in: "HashSet<String>", want: "map[string]struct{}"},
		{in: "Box<User>", want: "User"},
		{in: "[String]", want: "[]string"},
		{in: "[u8; 4]", want: "[4]uint8"},
		{in: "[]String", want: "[]string"},
		{in: "map[String]i64", want: "map[string]int64"},
		{in: "*User", want: "*User"},
		{in: "Page<User>", want: "Page[User]"},
		{in: "time.Time", want: "time.Time"},
		{in: "Vec<String, i32>", wantErr: true},
		{in: "Foo<Bar", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := translateType(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("translateType(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("translateType(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("translateType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScope_ResolveType(t *testing.T) {
	s := newScope([]ImportDef{
		{Path: "example.com/models", Items: []string{"User"}},
		{Path: "time"},
	})
	s.typeParams["T"] = true

	tests := []struct {
		in      string
		want    string
		wantErr string
	}{
		{in: "User", want: "models.User"},
		{in: "Vec<User>", want: "[]models.User"},
		{in: "Option<User>", want: "*models.User"},
		{in: "map[string]User", want: "map[string]models.User"},
		{in: "models.Role", want: "models.Role"},
		{in: "time.Duration", want: "time.Duration"},
		{in: "Vec<T>", want: "[]T"},
		{in: "Widget", want: "Widget"},
		{in: "func(int) string", want: "func(int) string"},
		{in: "[]string", want: "[]string"},
		{in: "*User", want: "*models.User"},
		{in: "HashMap<String, Vec<i32>>", want: "map[string][]int32"},
		{in: "Option<Vec<User>>", want: "*[]models.User"},
		{in: "other.Thing", wantErr: "package other is not imported"},
		{in: "strng", wantErr: "unknown type strng"},
		{in: "Vec<strng>", wantErr: "unknown type strng"},
		{in: "1 + 2", wantErr: "invalid type"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := s.resolveType(tt.in)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("resolveType(%q) = %q, %v; want error containing %q", tt.in, got, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveType(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("resolveType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if !s.used["models"] || !s.used["time"] {
		t.Errorf("used packages = %v", s.used)
	}
}

func TestExportName(t *testing.T) {
	tests := map[string]string{
		"name":         "Name",
		"user_id":      "UserID",
		"isActive":     "IsActive",
		"html_content": "HTMLContent",
		"url":          "URL",
		"class":        "Class",
		"userId":       "UserID",
	}

	for in, want := range tests {
		if got := exportName(in); got != want {
			t.Errorf("exportName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`"a"`, []string{`"a"`}},
		{`"a" | "b"`, []string{`"a"`, `"b"`}},
		{`"x|y" | f(a | b)`, []string{`"x|y"`, `f(a | b)`}},
		{`a || b`, []string{`a || b`}},
	}

	for _, tt := range tests {
		got := splitPattern(tt.in)
		if strings.Join(got, "\x00") != strings.Join(tt.want, "\x00") {
			t.Errorf("splitPattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
