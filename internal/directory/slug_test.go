package directory

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"María López", "maria-lopez"},
		{"Juan Pérez", "juan-perez"},
		{"  Ana   Gómez  ", "ana-gomez"},
		{"Dr. José Ñañez", "dr-jose-nanez"},
		{"Estudio 21", "estudio-21"},
		{"ALL CAPS", "all-caps"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Slugify(tc.name); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
