package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vela/internal/diag"
	"vela/internal/observ"
	"vela/internal/outline"
	"vela/internal/source"
)

// Options configures outline runs.
type Options struct {
	// MaxDiagnostics bounds every unit's diagnostic bag; <=0 means 100.
	MaxDiagnostics int
	// Jobs caps directory-run parallelism; <=0 means GOMAXPROCS.
	Jobs int
	// Cache supplies previous-compilation slot indexes. Nil disables reuse.
	Cache *RefCache
	// WriteCache stores this run's slot indexes back into the cache.
	WriteCache bool
	// Progress receives pipeline events; nil discards them.
	Progress ProgressSink
	// Timings attaches per-stage timing diagnostics to each unit.
	Timings bool
}

// UnitResult содержит результат outline-прохода одного юнита.
// UnitResult holds one unit's outline run.
type UnitResult struct {
	Path    string          // путь к скрипту событий
	FileID  source.FileID   // ID файла в FileSet
	Outline *outline.Result // собранный outline юнита
	Bag     *diag.Bag       // диагностики
	Timing  *observ.Report  // тайминги стадий (по запросу)
}

// listVLFiles возвращает отсортированный список всех *.vl файлов в директории.
func listVLFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".vl") {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// OutlineFile runs the outline pass over a single event script. Load
// failures and script mistakes land in the unit's bag, never in an error.
func OutlineFile(fileSet *source.FileSet, interner *source.Interner, path string, opts Options) *UnitResult {
	if interner == nil {
		interner = source.NewInterner()
	}
	emit(opts.Progress, path, StageRead, StatusQueued, nil, 0)
	fileID, err := fileSet.Load(path)
	return outlineUnit(fileSet, interner, path, fileID, err, opts)
}

// OutlineDir прогоняет outline по всем *.vl файлам директории параллельно.
// OutlineDir runs the outline pass over every *.vl file in dir in parallel.
func OutlineDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []UnitResult, error) {
	// Собираем список файлов
	files, err := listVLFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	if len(files) == 0 {
		return source.NewFileSetWithBase(dir), nil, nil
	}

	// Создаём FileSet и предзагружаем все файлы
	fileSet := source.NewFileSetWithBase(dir)
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))

	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			// Сохраняем ошибку загрузки для последующей обработки
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	// Общий потокобезопасный interner на все юниты
	interner := source.NewInterner()

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	emitQueued(opts.Progress, files)

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]UnitResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func(i int, path string) func() error {
			return func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				res := outlineUnit(fileSet, interner, path, fileIDs[path], loadErrors[path], opts)
				results[i] = *res
				return nil
			}
		}(i, path))
	}

	// Ждём завершения всех горутин
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}

	return fileSet, results, nil
}

// outlineUnit is the shared per-unit pipeline: read, decode, construct,
// link, bind.
func outlineUnit(fileSet *source.FileSet, interner *source.Interner, path string, fileID source.FileID, loadErr error, opts Options) *UnitResult {
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	bag := diag.NewBag(maxDiagnostics)
	res := &UnitResult{Path: path, Bag: bag}

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	begin := func(name string) int {
		if timer == nil {
			return -1
		}
		return timer.Begin(name)
	}
	end := func(idx int, note string) {
		if timer != nil {
			timer.End(idx, note)
		}
	}

	start := time.Now()
	emit(opts.Progress, path, StageRead, StatusWorking, nil, 0)
	readIdx := begin("read")
	if loadErr != nil {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOLoadFileError,
			Message:  "failed to load file: " + loadErr.Error(),
			Primary:  source.Span{},
		})
		end(readIdx, "")
		emit(opts.Progress, path, StageRead, StatusError, loadErr, time.Since(start))
		return res
	}
	file := fileSet.Get(fileID)
	res.FileID = fileID

	// Слоты прошлой компиляции, если кэш включён.
	var prev *outline.RefIndex
	if opts.Cache != nil {
		cached, ok, err := opts.Cache.Get(unitCacheKey(path))
		switch {
		case err != nil:
			bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.IOCacheReadError,
				Message:  "failed to read reference cache: " + err.Error(),
				Primary:  source.Span{},
			})
		case ok:
			prev = cached
		}
	}
	end(readIdx, "")

	reporter := &diag.BagReporter{Bag: bag}

	emit(opts.Progress, path, StageDecode, StatusWorking, nil, 0)
	decodeIdx := begin("decode")
	events := scanScript(file, interner, reporter)
	end(decodeIdx, fmt.Sprintf("%d events", len(events)))

	emit(opts.Progress, path, StageConstruct, StatusWorking, nil, 0)
	constructIdx := begin("construct")
	b := outline.NewBuilder(outline.Options{
		Strings:   interner,
		Reporter:  reporter,
		Unit:      fileID,
		PrevSlots: prev,
		Hints:     outline.Hints{Entities: uint(len(events))},
	})
	applyScript(b, fileID, events, reporter)
	end(constructIdx, "")

	emit(opts.Progress, path, StageLink, StatusWorking, nil, 0)
	linkIdx := begin("link")
	out := b.Finish()
	res.Outline = out
	end(linkIdx, fmt.Sprintf("%d declarations", out.Entities.Len()))

	emit(opts.Progress, path, StageBind, StatusWorking, nil, 0)
	bindIdx := begin("bind")
	if opts.Cache != nil && opts.WriteCache {
		if err := opts.Cache.Put(unitCacheKey(path), out.Slots); err != nil {
			bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.IOCacheWriteError,
				Message:  "failed to write reference cache: " + err.Error(),
				Primary:  source.Span{},
			})
		}
	}
	end(bindIdx, "")

	if timer != nil {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(bag, timingPayload{
			Kind:    "outline",
			Path:    path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}

	status := StatusDone
	if bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Progress, path, StageBind, status, nil, time.Since(start))
	return res
}

// unitCacheKey canonicalizes the unit path so cache identity survives
// relative invocations.
func unitCacheKey(path string) string {
	abs, err := source.AbsolutePath(path)
	if err != nil {
		return path
	}
	return abs
}
