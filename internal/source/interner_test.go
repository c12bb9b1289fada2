package source

import (
	"fmt"
	"sync"
	"testing"
)

// Базовые тесты функциональности

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	// NoStringID должен быть зарезервирован для пустой строки
	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("NoStringID должен возвращать пустую строку, получили: %q, ok=%v", s, ok)
	}

	// Intern новой строки
	id1 := interner.Intern("hello")
	if id1 == NoStringID {
		t.Error("Intern не должен возвращать NoStringID для непустой строки")
	}

	// Повторный Intern той же строки должен вернуть тот же ID
	id2 := interner.Intern("hello")
	if id1 != id2 {
		t.Errorf("Intern должен возвращать одинаковые ID для одинаковых строк: %d != %d", id1, id2)
	}

	// Lookup должен вернуть исходную строку
	if s, ok := interner.Lookup(id1); !ok || s != "hello" {
		t.Errorf("Lookup вернул неверную строку: %q, ok=%v", s, ok)
	}

	// Intern другой строки должен вернуть другой ID
	id3 := interner.Intern("world")
	if id3 == id1 {
		t.Error("Разные строки должны иметь разные ID")
	}

	// Len должен учитывать NoStringID
	if interner.Len() != 3 { // "", "hello", "world"
		t.Errorf("Len должен быть 3, получили: %d", interner.Len())
	}
}

func TestInternerBytes(t *testing.T) {
	interner := NewInterner()

	id1 := interner.InternBytes([]byte("test"))
	id2 := interner.Intern("test")

	if id1 != id2 {
		t.Errorf("InternBytes и Intern должны возвращать одинаковые ID для одной строки: %d != %d", id1, id2)
	}
}

func TestInternerIdentNFC(t *testing.T) {
	interner := NewInterner()

	// "café" через precomposed U+00E9 и через "e" + combining U+0301
	precomposed := "café"
	combining := "café"

	id1 := interner.InternIdent(precomposed)
	id2 := interner.InternIdent(combining)
	if id1 != id2 {
		t.Errorf("NFC-эквивалентные идентификаторы должны иметь один ID: %d != %d", id1, id2)
	}

	// Канонической формой хранится NFC
	if s := interner.MustLookup(id1); s != precomposed {
		t.Errorf("ожидали NFC-форму %q, получили %q", precomposed, s)
	}

	// ASCII-путь не меняет поведение Intern
	if interner.InternIdent("plain") != interner.Intern("plain") {
		t.Error("InternIdent для ASCII должен совпадать с Intern")
	}
}

func TestInternerHas(t *testing.T) {
	interner := NewInterner()

	if !interner.Has(NoStringID) {
		t.Error("Has должен возвращать true для NoStringID")
	}

	id := interner.Intern("test")
	if !interner.Has(id) {
		t.Error("Has должен возвращать true для валидного ID")
	}

	// Проверка несуществующего ID
	if interner.Has(StringID(9999)) {
		t.Error("Has должен возвращать false для несуществующего ID")
	}
}

func TestInternerFind(t *testing.T) {
	interner := NewInterner()
	before := interner.Len()

	// Find не должен добавлять строку в пул
	if id, ok := interner.Find("ghost"); ok || id != NoStringID {
		t.Errorf("Find для отсутствующей строки: id=%d, ok=%v", id, ok)
	}
	if interner.Len() != before {
		t.Errorf("Find не должен менять размер пула: %d != %d", interner.Len(), before)
	}

	want := interner.Intern("ghost")
	if id, ok := interner.Find("ghost"); !ok || id != want {
		t.Errorf("Find должен находить интернированную строку: id=%d, ok=%v", id, ok)
	}

	// Пустая строка всегда присутствует
	if id, ok := interner.Find(""); !ok || id != NoStringID {
		t.Errorf("Find для пустой строки: id=%d, ok=%v", id, ok)
	}
}

func TestInternerMustLookup(t *testing.T) {
	interner := NewInterner()

	id := interner.Intern("test")
	s := interner.MustLookup(id)
	if s != "test" {
		t.Errorf("MustLookup вернул неверную строку: %q", s)
	}

	// Проверка паники для невалидного ID
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup должен паниковать для невалидного ID")
		}
	}()
	interner.MustLookup(StringID(9999))
}

func TestInternerSnapshot(t *testing.T) {
	interner := NewInterner()

	interner.Intern("hello")
	interner.Intern("world")

	snapshot := interner.Snapshot()
	if len(snapshot) != 3 { // "", "hello", "world"
		t.Errorf("Snapshot должен содержать 3 элемента, получили: %d", len(snapshot))
	}

	// Проверка, что это копия (изменение snapshot не влияет на interner)
	snapshot[0] = "modified"
	if s, _ := interner.Lookup(NoStringID); s != "" {
		t.Error("Изменение snapshot не должно влиять на interner")
	}
}

// Тесты параллельного доступа

func TestInternerConcurrentIntern(t *testing.T) {
	interner := NewInterner()
	const numGoroutines = 100
	const numStrings = 1000

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	// Каждая горутина интернирует один и тот же набор строк
	for g := 0; g < numGoroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < numStrings; i++ {
				s := fmt.Sprintf("string_%d", i)
				interner.Intern(s)
			}
		}()
	}

	wg.Wait()

	// Проверяем, что каждая строка интернирована ровно один раз
	// (не должно быть дубликатов)
	expectedLen := numStrings + 1 // +1 для NoStringID
	if interner.Len() != expectedLen {
		t.Errorf("Ожидалось %d строк, получили: %d", expectedLen, interner.Len())
	}

	// Проверяем, что все строки доступны и имеют уникальные ID
	ids := make(map[StringID]bool)
	for i := 0; i < numStrings; i++ {
		s := fmt.Sprintf("string_%d", i)
		id := interner.Intern(s)
		if ids[id] {
			t.Errorf("Дубликат ID для строки %q: %d", s, id)
		}
		ids[id] = true

		if retrieved, ok := interner.Lookup(id); !ok || retrieved != s {
			t.Errorf("Lookup вернул неверную строку для %q: %q, ok=%v", s, retrieved, ok)
		}
	}
}

func TestInternerConcurrentMixed(t *testing.T) {
	interner := NewInterner()
	const numGoroutines = 50
	const iterations = 1000

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	// Половина горутин делает Intern, половина - Lookup/Has
	for g := 0; g < numGoroutines; g++ {
		g := g
		go func() {
			defer wg.Done()

			if g%2 == 0 {
				// Intern
				for i := 0; i < iterations; i++ {
					s := fmt.Sprintf("str_%d", i%100)
					interner.Intern(s)
				}
			} else {
				// Lookup/Has
				for i := 0; i < iterations; i++ {
					id := StringID(i % 50)
					interner.Has(id)
					interner.Lookup(id)
				}
			}
		}()
	}

	wg.Wait()

	// Проверка, что Len не паникует и возвращает разумное значение
	length := interner.Len()
	if length < 1 || length > 150 {
		t.Errorf("Неожиданный Len: %d", length)
	}
}

// Тест на корректность копирования строк
func TestInternerStringCopy(t *testing.T) {
	interner := NewInterner()

	// Создаём строку из буфера, который потом изменим
	buf := []byte("original")
	id := interner.InternBytes(buf)

	// Изменяем исходный буфер
	buf[0] = 'X'

	// Проверяем, что interner сохранил оригинальную строку
	if s, ok := interner.Lookup(id); !ok || s != "original" {
		t.Errorf("Interner должен сохранять копию строки, получили: %q", s)
	}
}

// Бенчмарки

func BenchmarkInternerIntern(b *testing.B) {
	interner := NewInterner()
	strings := make([]string, 1000)
	for i := range strings {
		strings[i] = fmt.Sprintf("benchmark_string_%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interner.Intern(strings[i%len(strings)])
	}
}

func BenchmarkInternerInternDuplicate(b *testing.B) {
	interner := NewInterner()
	const str = "duplicate_string"

	// Предварительно интернируем
	interner.Intern(str)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interner.Intern(str)
	}
}

func BenchmarkInternerLookup(b *testing.B) {
	interner := NewInterner()
	ids := make([]StringID, 1000)
	for i := range ids {
		ids[i] = interner.Intern(fmt.Sprintf("string_%d", i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		interner.Lookup(ids[i%len(ids)])
	}
}

func BenchmarkInternerConcurrentMixed(b *testing.B) {
	interner := NewInterner()

	// Предзаполняем
	ids := make([]StringID, 100)
	for i := range ids {
		ids[i] = interner.Intern(fmt.Sprintf("string_%d", i))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			switch i % 4 {
			case 0:
				interner.Intern(fmt.Sprintf("string_%d", i%100))
			case 1:
				interner.Lookup(ids[i%len(ids)])
			case 2:
				interner.Has(ids[i%len(ids)])
			case 3:
				_ = interner.Len()
			}
			i++
		}
	})
}
