package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// События outline-потока (декодер событий, стоящий на месте парсера)
	EvtInfo           Code = 2000
	EvtUnknownEvent   Code = 2001
	EvtBadArgument    Code = 2002
	EvtUnbalancedBegin Code = 2003
	EvtStrayEnd       Code = 2004
	EvtBadModifier    Code = 2005
	EvtBadTypeExpr    Code = 2006
	EvtMisplacedEvent Code = 2007

	// Построение outline (регистрация деклараций, скоупы, миксины)
	OutInfo                      Code = 3000
	OutDuplicateDeclaration      Code = 3001
	OutDuplicateTypeVariable     Code = 3002
	OutDeferredPrefixConflict    Code = 3003
	OutConstructorNameMismatch   Code = 3004
	OutMisplacedMetadata         Code = 3005
	OutMalformedImportUri        Code = 3006
	OutDuplicateLibraryDirective Code = 3007

	// Ошибки I/O
	IOLoadFileError   Code = 4001
	IOCacheReadError  Code = 4002
	IOCacheWriteError Code = 4003

	// Ошибки проекта / манифеста
	ProjInfo            Code = 5000
	ProjManifestInvalid Code = 5001
	ProjBadPackageName  Code = 5002

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var ( // todo расширить описания и использовать как notes
	codeDescription = map[Code]string{
		UnknownCode:                  "Unknown error",
		EvtInfo:                      "Event stream information",
		EvtUnknownEvent:              "Unknown outline event",
		EvtBadArgument:               "Malformed event argument",
		EvtUnbalancedBegin:           "Begin event without matching end",
		EvtStrayEnd:                  "End event without matching begin",
		EvtBadModifier:               "Unknown modifier name",
		EvtBadTypeExpr:               "Malformed type expression",
		EvtMisplacedEvent:            "Event is not allowed in this context",
		OutInfo:                      "Outline information",
		OutDuplicateDeclaration:      "Duplicate declaration",
		OutDuplicateTypeVariable:     "Duplicate type parameter",
		OutDeferredPrefixConflict:    "Deferred and immediate imports share a prefix",
		OutConstructorNameMismatch:   "Constructor name does not match its class",
		OutMisplacedMetadata:         "Metadata is not allowed here",
		OutMalformedImportUri:        "Malformed import URI",
		OutDuplicateLibraryDirective: "Duplicate library directive",
		IOLoadFileError:              "I/O load file error",
		IOCacheReadError:             "Reference cache read error",
		IOCacheWriteError:            "Reference cache write error",
		ProjInfo:                     "Project information",
		ProjManifestInvalid:          "Invalid project manifest",
		ProjBadPackageName:           "Invalid package name in manifest",
		ObsInfo:                      "Observability information",
		ObsTimings:                   "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("EVT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("OUT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
