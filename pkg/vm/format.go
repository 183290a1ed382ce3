package vm

import (
	"strconv"
	"strings"

	"github.com/lumen-lang/lumen/pkg/value"
)

// formatSpec is a parsed `[fill][align:<>^][sign:+-][#][0][width][.precision]
// [type]` specifier (spec.md §4.9 "__format_spec", grounded on
// original_source/rust/lumen-vm/tests/format_spec_wrapping_arithmetic_tests.rs).
type formatSpec struct {
	fill      byte
	align     byte // 0 if unset
	sign      byte // 0, '+', or '-'
	alt       bool // '#'
	zeroPad   bool
	width     int
	precision int
	hasPrec   bool
	kind      byte // x X o b f e d s, 0 if unset
}

func parseFormatSpec(spec string) formatSpec {
	fs := formatSpec{fill: ' '}

	i := 0
	if len(spec) >= 2 && (spec[1] == '<' || spec[1] == '>' || spec[1] == '^') {
		fs.fill = spec[0]
		fs.align = spec[1]
		i = 2
	} else if len(spec) >= 1 && (spec[0] == '<' || spec[0] == '>' || spec[0] == '^') {
		fs.align = spec[0]
		i = 1
	}

	if i < len(spec) && (spec[i] == '+' || spec[i] == '-') {
		fs.sign = spec[i]
		i++
	}

	if i < len(spec) && spec[i] == '#' {
		fs.alt = true
		i++
	}

	if i < len(spec) && spec[i] == '0' {
		fs.zeroPad = true
		i++
	}

	start := i
	for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
		i++
	}

	if i > start {
		fs.width, _ = strconv.Atoi(spec[start:i])
	}

	if i < len(spec) && spec[i] == '.' {
		i++
		pstart := i

		for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
			i++
		}

		fs.precision, _ = strconv.Atoi(spec[pstart:i])
		fs.hasPrec = true
	}

	if i < len(spec) {
		fs.kind = spec[i]
	}

	return fs
}

// formatValue implements the __format_spec(value, spec) formatting. No
// opcode in dispatch and no lowering calls it, so a `__format_spec` call in
// Lumen source does not reach it.
func formatValue(v value.Value, spec string) (string, *Error) {
	fs := parseFormatSpec(spec)

	var body string

	switch fs.kind {
	case 'x', 'X':
		n, ok := v.AsInt()
		if !ok {
			return "", &Error{Kind: InvalidFormatSpec, Message: "x/X format requires an Int"}
		}

		body = strconv.FormatInt(n, 16)
		if fs.kind == 'X' {
			body = strings.ToUpper(body)
		}

		if fs.alt {
			if fs.kind == 'X' {
				body = "0X" + body
			} else {
				body = "0x" + body
			}
		}
	case 'o':
		n, ok := v.AsInt()
		if !ok {
			return "", &Error{Kind: InvalidFormatSpec, Message: "o format requires an Int"}
		}

		body = strconv.FormatInt(n, 8)
		if fs.alt {
			body = "0o" + body
		}
	case 'b':
		n, ok := v.AsInt()
		if !ok {
			return "", &Error{Kind: InvalidFormatSpec, Message: "b format requires an Int"}
		}

		body = strconv.FormatInt(n, 2)
		if fs.alt {
			body = "0b" + body
		}
	case 'f':
		f, ok := v.AsFloat()
		if !ok {
			return "", &Error{Kind: InvalidFormatSpec, Message: "f format requires a number"}
		}

		prec := 6
		if fs.hasPrec {
			prec = fs.precision
		}

		body = strconv.FormatFloat(f, 'f', prec, 64)
	case 'e':
		f, ok := v.AsFloat()
		if !ok {
			return "", &Error{Kind: InvalidFormatSpec, Message: "e format requires a number"}
		}

		prec := 6
		if fs.hasPrec {
			prec = fs.precision
		}

		body = strconv.FormatFloat(f, 'e', prec, 64)
	case 'd':
		n, ok := v.AsInt()
		if !ok {
			return "", &Error{Kind: InvalidFormatSpec, Message: "d format requires an Int"}
		}

		body = strconv.FormatInt(n, 10)
	case 's', 0:
		body = v.DisplayPretty()
	default:
		return "", &Error{Kind: InvalidFormatSpec, Message: "unknown format type " + string(fs.kind)}
	}

	if fs.sign == '+' && strings.HasPrefix(body, "-") == false {
		if n, ok := v.AsFloat(); ok && n >= 0 && (fs.kind == 'f' || fs.kind == 'e' || fs.kind == 'd') {
			body = "+" + body
		}
	}

	if fs.width > len(body) {
		pad := fs.width - len(body)
		fill := fs.fill

		if fs.zeroPad && fs.align == 0 {
			return padZero(body, pad), nil
		}

		switch fs.align {
		case '<', 0:
			return body + strings.Repeat(string(fill), pad), nil
		case '>':
			return strings.Repeat(string(fill), pad) + body, nil
		case '^':
			left := pad / 2
			right := pad - left

			return strings.Repeat(string(fill), left) + body + strings.Repeat(string(fill), right), nil
		}
	}

	return body, nil
}

func padZero(body string, pad int) string {
	if strings.HasPrefix(body, "-") || strings.HasPrefix(body, "+") {
		return body[:1] + strings.Repeat("0", pad) + body[1:]
	}

	return strings.Repeat("0", pad) + body
}
