package domain

import "testing"

func TestParsePost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		want   ParsedPost
		wantOK bool
	}{
		{
			name:   "title then tag line",
			raw:    "Интересный фильм\n#фильмы хайп",
			want:   ParsedPost{Category: CategoryMovies, Title: "Интересный фильм", TagLine: "#фильмы хайп"},
			wantOK: true,
		},
		{
			name:   "tag line first",
			raw:    "#книги\nМежду нами горы\nОтличная история о дружбе",
			want:   ParsedPost{Category: CategoryBooks, Title: "Между нами горы", TagLine: "#книги"},
			wantOK: true,
		},
		{
			name:   "blank lines and padding",
			raw:    "\n\n   Во все тяжкие   \n\n  #Сериалы  \n",
			want:   ParsedPost{Category: CategorySeries, Title: "Во все тяжкие", TagLine: "#Сериалы"},
			wantOK: true,
		},
		{
			name:   "unrelated tags are not titles",
			raw:    "#драма #2024\nДюна\n#фильмы",
			want:   ParsedPost{Category: CategoryMovies, Title: "Дюна", TagLine: "#фильмы"},
			wantOK: true,
		},
		{
			name:   "first recognized tag wins",
			raw:    "Книга и фильм\n#книги\n#фильмы",
			want:   ParsedPost{Category: CategoryBooks, Title: "Книга и фильм", TagLine: "#книги"},
			wantOK: true,
		},
		{
			name:   "windows line endings",
			raw:    "Дюна\r\n#фильмы\r\n",
			want:   ParsedPost{Category: CategoryMovies, Title: "Дюна", TagLine: "#фильмы"},
			wantOK: true,
		},
		{name: "no recognized tag", raw: "Просто текст\n#музыка", wantOK: false},
		{name: "tag without title", raw: "#фильмы\n#драма", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
		{name: "whitespace only", raw: " \n\t\n", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParsePost(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ParsePost ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParsePost = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func FuzzParsePost(f *testing.F) {
	f.Add("Интересный фильм\n#фильмы хайп")
	f.Add("#книги\n\nТитул")
	f.Add("")
	f.Fuzz(func(t *testing.T, raw string) {
		p, ok := ParsePost(raw)
		if !ok {
			return
		}
		if !p.Category.IsValid() {
			t.Fatalf("invalid category %q", p.Category)
		}
		if p.Title == "" {
			t.Fatal("empty title accepted")
		}
	})
}
