package importer

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantHeaders []string
		wantRows    int
	}{
		{
			name:        "basic CSV",
			data:        "title,status\nInception,finished\nDark,watching\n",
			wantHeaders: []string{"title", "status"},
			wantRows:    2,
		},
		{
			name:        "CRLF line endings",
			data:        "title,status\r\nInception,finished\r\n",
			wantHeaders: []string{"title", "status"},
			wantRows:    1,
		},
		{
			name:        "UTF-8 BOM stripped from first header",
			data:        "\xEF\xBB\xBFtitle,status\nInception,finished\n",
			wantHeaders: []string{"title", "status"},
			wantRows:    1,
		},
		{
			name:        "blank lines skipped",
			data:        "title,status\n\nInception,finished\n,\nDark,watching\n",
			wantHeaders: []string{"title", "status"},
			wantRows:    2,
		},
		{
			name:        "quoted field with comma",
			data:        "title,notes\n\"Lock, Stock\",\"great, rewatch\"\n",
			wantHeaders: []string{"title", "notes"},
			wantRows:    1,
		},
		{
			name:        "headers cleaned of quotes and whitespace",
			data:        "\" title \",\"status\"\nInception,finished\n",
			wantHeaders: []string{"title", "status"},
			wantRows:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Decode([]byte(tt.data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(table.Headers) != len(tt.wantHeaders) {
				t.Fatalf("Headers = %v, want %v", table.Headers, tt.wantHeaders)
			}
			for i, h := range tt.wantHeaders {
				if table.Headers[i] != h {
					t.Errorf("Headers[%d] = %q, want %q", i, table.Headers[i], h)
				}
			}
			if len(table.Rows) != tt.wantRows {
				t.Errorf("len(Rows) = %d, want %d", len(table.Rows), tt.wantRows)
			}
		})
	}
}

func TestDecode_ShortRowsPadWithEmpty(t *testing.T) {
	table, err := Decode([]byte("title,status,platform\nInception,finished\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	row := table.Rows[0]
	if row["title"] != "Inception" {
		t.Errorf("title = %q", row["title"])
	}
	if row["platform"] != "" {
		t.Errorf("platform = %q, want empty", row["platform"])
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty file", ""},
		{"only blank lines", "\n\n,\n"},
		{"header only", "title,status\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Decode() error = %v, want *DecodeError", err)
			}
		})
	}
}

func TestDecode_InvalidUTF8Sanitized(t *testing.T) {
	data := []byte("title\nCaf\xe9 Society\n") // latin-1 é
	table, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := table.Rows[0]["title"]
	if got != "Caf� Society" {
		t.Errorf("title = %q, want replacement rune in place of invalid byte", got)
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Inception  ", "Inception"},
		{`="12345"`, "12345"},
		{"=SUM", "SUM"},
		{`"quoted"`, "quoted"},
		{"'single'", "single"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
