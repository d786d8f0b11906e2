package mdexport

import (
	"errors"
	"slices"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	want := Options{
		Theme:               ThemeGitHub,
		FontSize:            FontSizeMedium,
		FontFamily:          FontFamilySystem,
		LineHeight:          LineHeightNormal,
		IncludeTOC:          false,
		SyntaxHighlighting:  true,
		ExternalLinksNewTab: true,
		IncludePageNumbers:  false,
		IncludeTimestamp:    false,
		DarkMode:            false,
		PageSize:            PageSizeA4,
		Margins:             MarginsNormal,
	}
	if got := DefaultOptions(); got != want {
		t.Errorf("DefaultOptions() = %+v, want %+v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestOptions_Validate - Enumerated fields
// ---------------------------------------------------------------------------

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Options) {}},
		{name: "empty enums mean defaults", mutate: func(o *Options) { *o = Options{} }},
		{name: "unknown theme is not an error", mutate: func(o *Options) { o.Theme = "solarized" }},
		{name: "every valid value", mutate: func(o *Options) {
			o.FontSize, o.FontFamily, o.LineHeight = FontSizeLarge, FontFamilyMono, LineHeightRelaxed
			o.PageSize, o.Margins = PageSizeLegal, MarginsWide
		}},
		{name: "bad font size", mutate: func(o *Options) { o.FontSize = "huge" }, wantErr: true},
		{name: "bad font family", mutate: func(o *Options) { o.FontFamily = "comic" }, wantErr: true},
		{name: "bad line height", mutate: func(o *Options) { o.LineHeight = "double" }, wantErr: true},
		{name: "bad page size", mutate: func(o *Options) { o.PageSize = "a3" }, wantErr: true},
		{name: "bad margins", mutate: func(o *Options) { o.Margins = "none" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := DefaultOptions()
			tt.mutate(&o)

			err := o.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOption) {
					t.Errorf("Validate() error = %v, want ErrInvalidOption", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	if got, err := ParseFontSize(" Large "); err != nil || got != FontSizeLarge {
		t.Errorf("ParseFontSize(\" Large \") = %q, %v", got, err)
	}
	if got, err := ParseFontFamily(""); err != nil || got != FontFamilySystem {
		t.Errorf("ParseFontFamily(\"\") = %q, %v", got, err)
	}
	if got, err := ParseLineHeight("COMPACT"); err != nil || got != LineHeightCompact {
		t.Errorf("ParseLineHeight(\"COMPACT\") = %q, %v", got, err)
	}
	if got, err := ParsePageSize("letter"); err != nil || got != PageSizeLetter {
		t.Errorf("ParsePageSize(\"letter\") = %q, %v", got, err)
	}
	if got, err := ParseMargins("narrow"); err != nil || got != MarginsNarrow {
		t.Errorf("ParseMargins(\"narrow\") = %q, %v", got, err)
	}

	_, err := ParsePageSize("tabloid")
	if !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("ParsePageSize(\"tabloid\") error = %v, want ErrInvalidOption", err)
	}
	if want := `invalid conversion option: page size "tabloid" (valid: a4, letter, legal)`; err.Error() != want {
		t.Errorf("error = %q, want %q", err, want)
	}
}

func TestThemes(t *testing.T) {
	t.Parallel()

	want := []Theme{ThemeGitHub, ThemeVSCodeDark, ThemeMedium, ThemeAcademic, ThemeMinimal, ThemeTokyoNight}
	if got := Themes(); !slices.Equal(got, want) {
		t.Errorf("Themes() = %v, want %v", got, want)
	}
	if !ParseTheme(" Academic ").IsKnown() {
		t.Error("ParseTheme(\" Academic \") should be known")
	}
	if Theme("solarized").IsKnown() {
		t.Error("solarized should not be known")
	}
}

// ---------------------------------------------------------------------------
// TestOptionValues - Pixel, stack and geometry mapping
// ---------------------------------------------------------------------------

func TestOptionValues(t *testing.T) {
	t.Parallel()

	sizes := map[FontSize]int{FontSizeSmall: 14, FontSizeMedium: 16, FontSizeLarge: 18, "": 16}
	for s, want := range sizes {
		if got := s.Pixels(); got != want {
			t.Errorf("FontSize(%q).Pixels() = %d, want %d", s, got, want)
		}
	}

	heights := map[LineHeight]float64{LineHeightCompact: 1.4, LineHeightNormal: 1.6, LineHeightRelaxed: 1.8}
	for l, want := range heights {
		if got := l.Value(); got != want {
			t.Errorf("LineHeight(%q).Value() = %v, want %v", l, got, want)
		}
	}

	pages := map[PageSize][2]float64{
		PageSizeA4:     {210, 297},
		PageSizeLetter: {215.9, 279.4},
		PageSizeLegal:  {215.9, 355.6},
	}
	for p, want := range pages {
		if w, h := p.Dimensions(); w != want[0] || h != want[1] {
			t.Errorf("PageSize(%q).Dimensions() = %v x %v, want %v", p, w, h, want)
		}
	}

	margins := map[Margins]float64{MarginsNarrow: 0.5, MarginsNormal: 1, MarginsWide: 1.5}
	for m, want := range margins {
		if got := m.Inches(); got != want {
			t.Errorf("Margins(%q).Inches() = %v, want %v", m, got, want)
		}
	}
	if got := MarginsNormal.Millimetres(); got != 25.4 {
		t.Errorf("MarginsNormal.Millimetres() = %v, want 25.4", got)
	}

	if FontFamilySerif.Stack() == FontFamilySystem.Stack() {
		t.Error("serif and system stacks should differ")
	}
}

func TestOptions_StyleOptions(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	o.PageSize = PageSizeLegal
	o.Margins = MarginsNarrow
	o.LineHeight = LineHeightCompact

	got := o.styleOptions()
	if got.PageSize != "215.9mm 355.6mm" {
		t.Errorf("PageSize = %q", got.PageSize)
	}
	if got.PageMargin != "0.5in" {
		t.Errorf("PageMargin = %q", got.PageMargin)
	}
	if got.LineHeight != 1.4 || got.FontSizePx != 16 || got.ContentWidthPx != contentWidthPx {
		t.Errorf("typography = %+v", got)
	}
	if !got.SyntaxHighlighting || got.IncludeTOC {
		t.Errorf("flags = highlight %v, toc %v", got.SyntaxHighlighting, got.IncludeTOC)
	}
}
