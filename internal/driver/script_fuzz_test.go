package driver

import (
	"testing"

	"vela/internal/diag"
	"vela/internal/outline"
	"vela/internal/source"
	"vela/internal/testkit"
)

const maxFuzzScript = 1 << 16 // 64 KiB

// scriptSeeds покрывает все формы строк, которые понимает декодер:
// валидные юниты, усечённые заголовки и заведомо сломанные события.
var scriptSeeds = []string{
	"",
	"# empty unit\n",
	"library widgets\nimport vela:core as core\nexport src/colors.vl\npart src/impl.vl\n",
	"class Widget\ntypevar T extends Comparable<T>\nextends Base\nwith Paint\nimplements Canvas\nfield size: core.Size = zero\nmethod draw\nparam area: core.Rect\nreturns bool\nend\nend\n",
	"mixin Paint\non Canvas\nmods\nend\n",
	"enum Color\nwith Label\nfield red\nfield green\nfield blue\nend\n",
	"newtype Meters\nnew Double\nend\n",
	"typedef Callback\ntypevar A\nalias fn(A, String) -> void\nend\n",
	"extension Pretty\non String\nmethod shout\nend\nend\n",
	"class Cache\nconstructor Cache::empty\nend\nfactory Cache::shared\nredirect Cache::empty\nend\nend\n",
	"meta\nclassmods base\n",
	"frobnicate Widget\n",
	"end\n",
	"class\n",
	"library a.b\n",
	"import\n",
	"field = broken\n",
	"typevar T extends\n",
	"class Widget\nmethod draw\n",
	"constructor ::\n",
	"class A\x00B\nend\n",
}

// FuzzOutlineScript прогоняет полный конвейер декодера и строителя:
// скан строк, применение событий, Finish и структурные инварианты.
// Паника или несвязный результат на любом входе считается находкой.
func FuzzOutlineScript(f *testing.F) {
	for _, seed := range scriptSeeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > maxFuzzScript {
			input = input[:maxFuzzScript]
		}

		fileSet := source.NewFileSet()
		fileID := fileSet.AddVirtual("fuzz.vl", []byte(input))
		file := fileSet.Get(fileID)
		interner := source.NewInterner()

		bag := diag.NewBag(64)
		reporter := &diag.BagReporter{Bag: bag}

		events := scanScript(file, interner, reporter)
		b := outline.NewBuilder(outline.Options{Strings: interner, Reporter: reporter, Unit: fileID})
		applyScript(b, fileID, events, reporter)
		res := b.Finish()

		if err := testkit.CheckOutlineInvariants(res, file); err != nil {
			t.Fatalf("outline invariants violated: %v", err)
		}
	})
}
