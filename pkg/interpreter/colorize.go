package interpreter

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/charly-lang/charly/pkg/runtime"
)

// builtinColorize decorates text with an SGR code: 30-37 and 90-97 select
// the foreground, 40-47 and 100-107 the background, 1/2/3/4/7/9 toggle
// bold, faint, italic, underline, reverse and strikethrough.
func builtinColorize(i *Interpreter, _ *callContext, args []runtime.Value) (runtime.Value, error) {
	text := runtime.Stringify(args[0])
	code, ok := args[1].(runtime.NumericValue)
	if !ok {
		parsed, err := strconv.Atoi(runtime.Stringify(args[1]))
		if err != nil {
			return nil, runtime.Errorf(runtime.ErrInvalidType, "colorize expects a Numeric color code, got %s", args[1].Kind())
		}
		code = runtime.NumericValue{Val: float64(parsed)}
	}
	return runtime.StringValue{Val: i.colorize(text, int(code.Val))}, nil
}

func (i *Interpreter) colorize(text string, code int) string {
	if i.renderer.ColorProfile() == termenv.Ascii {
		return text
	}
	style, ok := sgrStyle(i.renderer.NewStyle(), code)
	if !ok {
		return text
	}
	return style.TabWidth(lipgloss.NoTabConversion).Render(text)
}

func sgrStyle(style lipgloss.Style, code int) (lipgloss.Style, bool) {
	switch {
	case code >= 30 && code <= 37:
		return style.Foreground(lipgloss.Color(strconv.Itoa(code - 30))), true
	case code >= 90 && code <= 97:
		return style.Foreground(lipgloss.Color(strconv.Itoa(code - 90 + 8))), true
	case code >= 40 && code <= 47:
		return style.Background(lipgloss.Color(strconv.Itoa(code - 40))), true
	case code >= 100 && code <= 107:
		return style.Background(lipgloss.Color(strconv.Itoa(code - 100 + 8))), true
	}
	switch code {
	case 1:
		return style.Bold(true), true
	case 2:
		return style.Faint(true), true
	case 3:
		return style.Italic(true), true
	case 4:
		return style.Underline(true), true
	case 7:
		return style.Reverse(true), true
	case 9:
		return style.Strikethrough(true), true
	}
	return style, false
}
