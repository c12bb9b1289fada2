package driver

import (
	"fmt"
	"strings"

	"vela/internal/decl"
	"vela/internal/diag"
	"vela/internal/source"
)

// Событийный скрипт — построчная замена внешнего парсера: одна строка,
// один вызов оркестратора. Сканер проверяет только форму строки; контекст
// (что внутри чего открыто) проверяет применяющая сторона.
//
// The event script is the line-oriented stand-in for the external parser:
// one line, one orchestrator call. The scanner checks line shape only;
// context is the applier's job.

type scriptOp uint8

const (
	opInvalid scriptOp = iota
	opLibrary
	opImport
	opExport
	opPart
	opMeta
	opBeginClass
	opBeginMixin
	opBeginNamed
	opBeginEnum
	opBeginExtension
	opBeginExtensionType
	opBeginTypedef
	opBeginConstructor
	opBeginFactory
	opBeginMethod
	opEnd
	opMods
	opClassMods
	opExtends
	opWith
	opImplements
	opOn
	opTypeVar
	opField
	opParam
	opReturns
	opAlias
	opRedirect
	opNew
)

// typeExpr is a raw type-expression fragment with its file offset. The
// applier parses it against the builder, so in-scope type variables bind.
type typeExpr struct {
	text string
	off  uint32
}

// scriptEvent is one decoded line. Which fields are meaningful depends on
// the op: second carries the import prefix or a constructor's written class
// name, flag carries deferred/initializer/default presence.
type scriptEvent struct {
	op   scriptOp
	span source.Span

	name     source.StringID
	nameSpan source.Span

	second     source.StringID
	secondSpan source.Span

	types []typeExpr

	mods      decl.Modifiers
	classMods decl.ClassModifiers
	accessor  decl.Accessor
	flag      bool
}

type word struct {
	text string
	off  uint32
}

var memberModifierBits = map[string]decl.Modifiers{
	"abstract":  decl.ModAbstract,
	"static":    decl.ModStatic,
	"const":     decl.ModConst,
	"final":     decl.ModFinal,
	"late":      decl.ModLate,
	"external":  decl.ModExternal,
	"covariant": decl.ModCovariant,
	"required":  decl.ModRequired,
	"augment":   decl.ModAugment,
	"deferred":  decl.ModDeferred,
}

var classModifierBits = map[string]decl.ClassModifiers{
	"sealed":      decl.ClassSealed,
	"base":        decl.ClassBase,
	"interface":   decl.ClassInterface,
	"final":       decl.ClassFinal,
	"mixin-class": decl.ClassMixinClass,
	"augment":     decl.ClassAugment,
	"macro":       decl.ClassMacro,
}

type lineScanner struct {
	file     *source.File
	interner *source.Interner
	reporter diag.Reporter
}

// scanScript decodes a unit's event script into its event list. Malformed
// lines are reported and skipped; the returned events are well-formed.
func scanScript(file *source.File, interner *source.Interner, reporter diag.Reporter) []scriptEvent {
	sc := &lineScanner{file: file, interner: interner, reporter: reporter}
	var events []scriptEvent

	content := file.Content
	lineStart := 0
	for lineStart <= len(content) {
		lineEnd := lineStart
		for lineEnd < len(content) && content[lineEnd] != '\n' {
			lineEnd++
		}
		line := string(content[lineStart:lineEnd])
		if ev, ok := sc.scanLine(line, uint32(lineStart)); ok {
			events = append(events, ev)
		}
		if lineEnd >= len(content) {
			break
		}
		lineStart = lineEnd + 1
	}
	return events
}

func (sc *lineScanner) span(start, end uint32) source.Span {
	return source.NewSpan(sc.file.ID, start, end)
}

func (sc *lineScanner) wordSpan(w word) source.Span {
	return sc.span(w.off, w.off+uint32(len(w.text)))
}

func (sc *lineScanner) badArgument(sp source.Span, msg string) {
	diag.ReportError(sc.reporter, diag.EvtBadArgument, sp, msg).Emit()
}

// scanLine decodes one line. ok reports whether the line produced an event.
func (sc *lineScanner) scanLine(line string, base uint32) (scriptEvent, bool) {
	words := splitWords(line, base)
	if len(words) == 0 || words[0].text[0] == '#' {
		return scriptEvent{}, false
	}
	head := words[0]
	lineSpan := sc.span(head.off, base+uint32(len(line)))
	ev := scriptEvent{span: lineSpan}

	switch head.text {
	case "library":
		ev.op = opLibrary
		return sc.scanName(ev, words, "library name")
	case "import":
		return sc.scanImport(ev, words)
	case "export":
		ev.op = opExport
		return sc.scanURI(ev, words)
	case "part":
		ev.op = opPart
		return sc.scanURI(ev, words)
	case "meta":
		ev.op = opMeta
		return sc.scanBare(ev, words)
	case "class":
		ev.op = opBeginClass
		return sc.scanName(ev, words, "class name")
	case "mixin":
		ev.op = opBeginMixin
		return sc.scanName(ev, words, "mixin name")
	case "named":
		ev.op = opBeginNamed
		return sc.scanName(ev, words, "mixin application name")
	case "enum":
		ev.op = opBeginEnum
		return sc.scanName(ev, words, "enum name")
	case "extension":
		return sc.scanExtension(ev, words)
	case "newtype":
		ev.op = opBeginExtensionType
		return sc.scanName(ev, words, "extension type name")
	case "typedef":
		ev.op = opBeginTypedef
		return sc.scanName(ev, words, "typedef name")
	case "constructor":
		ev.op = opBeginConstructor
		return sc.scanConstructor(ev, words)
	case "factory":
		ev.op = opBeginFactory
		return sc.scanConstructor(ev, words)
	case "method":
		ev.op = opBeginMethod
		return sc.scanName(ev, words, "method name")
	case "getter":
		ev.op = opBeginMethod
		ev.accessor = decl.AccessorGetter
		return sc.scanName(ev, words, "getter name")
	case "setter":
		ev.op = opBeginMethod
		ev.accessor = decl.AccessorSetter
		return sc.scanName(ev, words, "setter name")
	case "end":
		ev.op = opEnd
		return sc.scanBare(ev, words)
	case "mods":
		return sc.scanModifiers(ev, words)
	case "classmods":
		return sc.scanClassModifiers(ev, words)
	case "extends":
		ev.op = opExtends
		return sc.scanRestType(ev, line, base, words, "supertype")
	case "with":
		ev.op = opWith
		return sc.scanRestType(ev, line, base, words, "mixin list")
	case "implements":
		ev.op = opImplements
		return sc.scanRestType(ev, line, base, words, "interface list")
	case "on":
		ev.op = opOn
		return sc.scanRestType(ev, line, base, words, "on-type list")
	case "typevar":
		return sc.scanTypeVar(ev, line, base, words)
	case "field":
		ev.op = opField
		return sc.scanVariable(ev, line, base, words)
	case "param":
		ev.op = opParam
		return sc.scanVariable(ev, line, base, words)
	case "returns":
		ev.op = opReturns
		return sc.scanRestType(ev, line, base, words, "return type")
	case "alias":
		ev.op = opAlias
		return sc.scanRestType(ev, line, base, words, "aliased type")
	case "redirect":
		ev.op = opRedirect
		return sc.scanRestType(ev, line, base, words, "redirect target")
	case "new":
		ev.op = opNew
		return sc.scanRestType(ev, line, base, words, "constructor reference")
	}

	diag.ReportError(sc.reporter, diag.EvtUnknownEvent, sc.wordSpan(head),
		fmt.Sprintf("unknown event '%s'", head.text)).Emit()
	return scriptEvent{}, false
}

// scanBare rejects arguments on a zero-argument event.
func (sc *lineScanner) scanBare(ev scriptEvent, words []word) (scriptEvent, bool) {
	if len(words) > 1 {
		sc.badArgument(sc.wordSpan(words[1]),
			fmt.Sprintf("'%s' takes no arguments", words[0].text))
		return scriptEvent{}, false
	}
	return ev, true
}

// scanName decodes events of form `keyword <ident>`.
func (sc *lineScanner) scanName(ev scriptEvent, words []word, what string) (scriptEvent, bool) {
	if len(words) < 2 {
		sc.badArgument(sc.wordSpan(words[0]), "missing "+what)
		return scriptEvent{}, false
	}
	if len(words) > 2 {
		sc.badArgument(sc.wordSpan(words[2]), "unexpected trailing argument")
		return scriptEvent{}, false
	}
	name := words[1]
	if !isIdent(name.text) {
		sc.badArgument(sc.wordSpan(name), fmt.Sprintf("'%s' is not an identifier", name.text))
		return scriptEvent{}, false
	}
	ev.name = sc.interner.InternIdent(name.text)
	ev.nameSpan = sc.wordSpan(name)
	return ev, true
}

// scanURI decodes `export <uri>` and `part <uri>`.
func (sc *lineScanner) scanURI(ev scriptEvent, words []word) (scriptEvent, bool) {
	if len(words) < 2 {
		sc.badArgument(sc.wordSpan(words[0]), "missing directive URI")
		return scriptEvent{}, false
	}
	if len(words) > 2 {
		sc.badArgument(sc.wordSpan(words[2]), "unexpected trailing argument")
		return scriptEvent{}, false
	}
	ev.name = sc.interner.Intern(words[1].text)
	ev.nameSpan = sc.wordSpan(words[1])
	return ev, true
}

// scanImport decodes `import <uri> [as <prefix>] [deferred]`.
func (sc *lineScanner) scanImport(ev scriptEvent, words []word) (scriptEvent, bool) {
	ev.op = opImport
	if len(words) < 2 {
		sc.badArgument(sc.wordSpan(words[0]), "missing import URI")
		return scriptEvent{}, false
	}
	ev.name = sc.interner.Intern(words[1].text)
	ev.nameSpan = sc.wordSpan(words[1])

	rest := words[2:]
	for len(rest) > 0 {
		switch rest[0].text {
		case "as":
			if len(rest) < 2 {
				sc.badArgument(sc.wordSpan(rest[0]), "missing prefix after 'as'")
				return scriptEvent{}, false
			}
			if !isIdent(rest[1].text) {
				sc.badArgument(sc.wordSpan(rest[1]),
					fmt.Sprintf("'%s' is not an identifier", rest[1].text))
				return scriptEvent{}, false
			}
			ev.second = sc.interner.InternIdent(rest[1].text)
			ev.secondSpan = sc.wordSpan(rest[1])
			rest = rest[2:]
		case "deferred":
			ev.flag = true
			rest = rest[1:]
		default:
			sc.badArgument(sc.wordSpan(rest[0]),
				fmt.Sprintf("unexpected '%s' in import", rest[0].text))
			return scriptEvent{}, false
		}
	}
	return ev, true
}

// scanExtension decodes `extension [<name>]`; unnamed extensions are legal.
func (sc *lineScanner) scanExtension(ev scriptEvent, words []word) (scriptEvent, bool) {
	ev.op = opBeginExtension
	if len(words) == 1 {
		return ev, true
	}
	return sc.scanName(ev, words, "extension name")
}

// scanConstructor decodes `constructor C[.name]` and `factory C[.name]`.
// The written class part lands in second, the constructor name in name.
func (sc *lineScanner) scanConstructor(ev scriptEvent, words []word) (scriptEvent, bool) {
	if len(words) < 2 {
		sc.badArgument(sc.wordSpan(words[0]), "missing constructor name")
		return scriptEvent{}, false
	}
	if len(words) > 2 {
		sc.badArgument(sc.wordSpan(words[2]), "unexpected trailing argument")
		return scriptEvent{}, false
	}
	w := words[1]
	classPart := w.text
	namePart := ""
	dot := strings.IndexByte(w.text, '.')
	if dot >= 0 {
		classPart = w.text[:dot]
		namePart = w.text[dot+1:]
	}
	if !isIdent(classPart) || (dot >= 0 && !isIdent(namePart)) {
		sc.badArgument(sc.wordSpan(w),
			fmt.Sprintf("'%s' is not a constructor name", w.text))
		return scriptEvent{}, false
	}
	ev.second = sc.interner.InternIdent(classPart)
	ev.secondSpan = sc.span(w.off, w.off+uint32(len(classPart)))
	if dot >= 0 {
		nameOff := w.off + uint32(dot) + 1
		ev.name = sc.interner.InternIdent(namePart)
		ev.nameSpan = sc.span(nameOff, nameOff+uint32(len(namePart)))
	}
	return ev, true
}

// scanModifiers decodes `mods <word>...`. Unknown words are reported and
// skipped so the rest of the line still applies.
func (sc *lineScanner) scanModifiers(ev scriptEvent, words []word) (scriptEvent, bool) {
	ev.op = opMods
	if len(words) < 2 {
		sc.badArgument(sc.wordSpan(words[0]), "missing modifier list")
		return scriptEvent{}, false
	}
	for _, w := range words[1:] {
		bit, ok := memberModifierBits[w.text]
		if !ok {
			diag.ReportError(sc.reporter, diag.EvtBadModifier, sc.wordSpan(w),
				fmt.Sprintf("unknown modifier '%s'", w.text)).Emit()
			continue
		}
		ev.mods |= bit
	}
	return ev, true
}

// scanClassModifiers decodes `classmods <word>...`.
func (sc *lineScanner) scanClassModifiers(ev scriptEvent, words []word) (scriptEvent, bool) {
	ev.op = opClassMods
	if len(words) < 2 {
		sc.badArgument(sc.wordSpan(words[0]), "missing class modifier list")
		return scriptEvent{}, false
	}
	for _, w := range words[1:] {
		bit, ok := classModifierBits[w.text]
		if !ok {
			diag.ReportError(sc.reporter, diag.EvtBadModifier, sc.wordSpan(w),
				fmt.Sprintf("unknown class modifier '%s'", w.text)).Emit()
			continue
		}
		ev.classMods |= bit
	}
	return ev, true
}

// scanRestType captures the rest of the line as one raw type fragment.
func (sc *lineScanner) scanRestType(ev scriptEvent, line string, base uint32, words []word, what string) (scriptEvent, bool) {
	head := words[0]
	restOff := int(head.off-base) + len(head.text)
	text, off := trimFragment(line, restOff, base)
	if text == "" {
		sc.badArgument(sc.wordSpan(head), "missing "+what)
		return scriptEvent{}, false
	}
	ev.types = []typeExpr{{text: text, off: off}}
	return ev, true
}

// scanTypeVar decodes `typevar <name> [extends <bound>]`.
func (sc *lineScanner) scanTypeVar(ev scriptEvent, line string, base uint32, words []word) (scriptEvent, bool) {
	ev.op = opTypeVar
	if len(words) < 2 {
		sc.badArgument(sc.wordSpan(words[0]), "missing type variable name")
		return scriptEvent{}, false
	}
	name := words[1]
	if !isIdent(name.text) {
		sc.badArgument(sc.wordSpan(name), fmt.Sprintf("'%s' is not an identifier", name.text))
		return scriptEvent{}, false
	}
	ev.name = sc.interner.InternIdent(name.text)
	ev.nameSpan = sc.wordSpan(name)
	if len(words) == 2 {
		return ev, true
	}
	if words[2].text != "extends" {
		sc.badArgument(sc.wordSpan(words[2]), "expected 'extends' before the bound")
		return scriptEvent{}, false
	}
	restOff := int(words[2].off-base) + len(words[2].text)
	text, off := trimFragment(line, restOff, base)
	if text == "" {
		sc.badArgument(sc.wordSpan(words[2]), "missing bound after 'extends'")
		return scriptEvent{}, false
	}
	ev.types = []typeExpr{{text: text, off: off}}
	return ev, true
}

// scanVariable decodes `field|param [modifiers] <name> [: <type>] [= <init>]`.
// Everything after `=` is opaque: initializer bodies are outside the outline.
func (sc *lineScanner) scanVariable(ev scriptEvent, line string, base uint32, words []word) (scriptEvent, bool) {
	rest := words[1:]
	for len(rest) > 0 {
		bit, ok := memberModifierBits[rest[0].text]
		if !ok {
			break
		}
		ev.mods |= bit
		rest = rest[1:]
	}
	if len(rest) == 0 {
		sc.badArgument(sc.wordSpan(words[0]), "missing variable name")
		return scriptEvent{}, false
	}

	nameText := rest[0].text
	if cut := strings.IndexByte(nameText, ':'); cut >= 0 {
		nameText = nameText[:cut]
	}
	if !isIdent(nameText) {
		sc.badArgument(sc.wordSpan(rest[0]),
			fmt.Sprintf("'%s' is not an identifier", nameText))
		return scriptEvent{}, false
	}
	ev.name = sc.interner.InternIdent(nameText)
	nameOff := rest[0].off
	ev.nameSpan = sc.span(nameOff, nameOff+uint32(len(nameText)))

	// Остаток строки после имени: `: тип` и `= инициализатор`.
	tail := line[int(nameOff-base)+len(nameText):]
	tailOff := nameOff + uint32(len(nameText))
	if eq := strings.IndexByte(tail, '='); eq >= 0 {
		ev.flag = true
		tail = tail[:eq]
	}
	if colon := strings.IndexByte(tail, ':'); colon >= 0 {
		text, off := trimFragment(tail, colon+1, tailOff)
		if text == "" {
			sc.badArgument(sc.span(tailOff+uint32(colon), tailOff+uint32(colon)+1),
				"missing type after ':'")
			return scriptEvent{}, false
		}
		ev.types = []typeExpr{{text: text, off: off}}
	}
	return ev, true
}

// splitWords splits a line into whitespace-separated words with byte offsets.
func splitWords(line string, base uint32) []word {
	var words []word
	i := 0
	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			break
		}
		start := i
		for i < len(line) && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		words = append(words, word{text: line[start:i], off: base + uint32(start)})
	}
	return words
}

// trimFragment trims whitespace around line[from:], keeping the offset of
// the first retained byte.
func trimFragment(line string, from int, base uint32) (string, uint32) {
	end := len(line)
	for from < end && (line[from] == ' ' || line[from] == '\t') {
		from++
	}
	for end > from && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	return line[from:end], base + uint32(from)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
