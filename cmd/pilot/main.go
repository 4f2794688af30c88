// pilot - полевой клиент: ведет сессию на устройстве, размещает объекты,
// синхронизирует их с сервером и отправляет отчет.
//
//	pilot start
//	pilot place Line
//	pilot point -lat 60.1 -lng 10.2 -elevation 120
//	pilot finish
//	pilot type -id 6
//	pilot sync
//	pilot end
//	pilot finalize
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/config"
	"github.com/hindrance-reporter/internal/domain"
	"github.com/hindrance-reporter/internal/infrastructure/hindranceapi"
	"github.com/hindrance-reporter/internal/journey"
	"github.com/hindrance-reporter/internal/pkg/logger"
)

type app struct {
	store     *journey.Store
	placement *journey.Placement
	syncer    *journey.Syncer
	client    *hindranceapi.Client
	log       *zap.Logger
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"start":          {"начать сессию", cmdStart},
	"meta":           {"-title T -description D: метаданные сессии", cmdMeta},
	"place":          {"<Point|Line|Area>: начать размещение объекта", cmdPlace},
	"point":          {"-lat -lng [-elevation] [-label]: добавить точку", cmdPoint},
	"finish":         {"закончить сбор точек", cmdFinish},
	"type":           {"[-id N]: выбрать тип (без -id тип по умолчанию)", cmdType},
	"cancel":         {"отменить размещение", cmdCancel},
	"edit-object":    {"-id ID [-title] [-description] [-type]: изменить объект", cmdEditObject},
	"delete-object":  {"-id ID: пометить объект удаленным", cmdDeleteObject(true)},
	"restore-object": {"-id ID: снять пометку удаления", cmdDeleteObject(false)},
	"end":            {"завершить сессию", cmdEnd},
	"undo-end":       {"вернуть завершенную сессию в работу", cmdUndoEnd},
	"sync":           {"отправить неотправленные объекты", cmdSync},
	"finalize":       {"отправить завершенную сессию как отчет", cmdFinalize},
	"status":         {"показать состояние", cmdStatus},
	"types":          {"каталог типов с сервера", cmdTypes},
	"report":         {"-id ID: отчет с сервера", cmdReport},
	"reset":          {"удалить все локальные данные", cmdReset},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, "pilot", logger.ToStderr())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Pilot.UserID == "" {
		log.Fatal("PILOT_USER_ID is not set")
	}

	store, err := journey.Open(journey.NewFileStorage(cfg.Pilot.StateFile, log))
	if err != nil {
		log.Fatal("Failed to open journey state", zap.String("path", cfg.Pilot.StateFile), zap.Error(err))
	}

	client := hindranceapi.NewClient(&cfg.Pilot, log)
	a := &app{
		store:     store,
		placement: journey.NewPlacement(store),
		syncer:    journey.NewSyncer(store, client, log),
		client:    client,
		log:       log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, a, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pilot <command> [flags]")
	for _, name := range []string{
		"start", "meta", "place", "point", "finish", "type", "cancel",
		"edit-object", "delete-object", "restore-object",
		"end", "undo-end", "sync", "finalize", "status", "types", "report", "reset",
	} {
		fmt.Fprintf(os.Stderr, "  %-15s %s\n", name, commands[name].usage)
	}
}

// describe - текст ошибки для пользователя
func describe(err error) string {
	var apiErr *hindranceapi.APIError
	switch {
	case errors.Is(err, journey.ErrNotEnoughPoints):
		return "Not enough points for this geometry. Add more points and try again."
	case hindranceapi.IsTransient(err):
		return fmt.Sprintf("Server unreachable, changes stay pending: %v", err)
	case errors.As(err, &apiErr):
		var b strings.Builder
		fmt.Fprintf(&b, "Server rejected the request (%d %s): %s", apiErr.StatusCode, apiErr.Code, apiErr.Message)
		for field, msgs := range apiErr.Fields {
			fmt.Fprintf(&b, "\n  %s: %s", field, strings.Join(msgs, "; "))
		}
		return b.String()
	default:
		return err.Error()
	}
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

// visited - какие флаги заданы явно
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdStart(ctx context.Context, a *app, args []string) error {
	j, err := a.store.StartJourney()
	if err != nil {
		return err
	}
	fmt.Printf("Journey %s started\n", j.ID)
	return nil
}

func cmdMeta(ctx context.Context, a *app, args []string) error {
	fs := newFlags("meta")
	title := fs.String("title", "", "journey title")
	description := fs.String("description", "", "journey description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := visited(fs)
	var patch journey.MetaPatch
	if set["title"] {
		patch.Title = title
	}
	if set["description"] {
		patch.Description = description
	}

	if a.store.Snapshot().FinishedJourney != nil {
		return a.store.UpdateFinishedJourneyMeta(patch)
	}
	return a.store.UpdateJourneyMeta(patch)
}

func cmdPlace(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pilot place <Point|Line|Area>")
	}
	kind, err := domain.ParseGeometryType(args[0])
	if err != nil {
		return err
	}
	return a.placement.StartPlacingObjects(kind)
}

func cmdPoint(ctx context.Context, a *app, args []string) error {
	fs := newFlags("point")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	elevation := fs.Int("elevation", 0, "elevation in meters")
	label := fs.String("label", "", "point label")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := visited(fs)
	if !set["lat"] || !set["lng"] {
		return fmt.Errorf("-lat and -lng are required")
	}
	point := domain.Point{Lat: *lat, Lng: *lng}
	if set["elevation"] {
		point.Elevation = elevation
	}
	if set["label"] {
		point.Label = label
	}

	if err := a.placement.AddPoint(point); err != nil {
		return err
	}
	fmt.Printf("%d point(s) placed\n", len(a.placement.Points()))
	return nil
}

func cmdFinish(ctx context.Context, a *app, args []string) error {
	if err := a.placement.FinishPlace(); err != nil {
		return err
	}
	fmt.Println("Select a type: pilot type -id N (or without -id for the default type)")
	return nil
}

func cmdType(ctx context.Context, a *app, args []string) error {
	fs := newFlags("type")
	id := fs.Int("id", 0, "hindrance type id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var typeID *int
	if visited(fs)["id"] {
		typeID = id
	}
	obj, err := a.placement.SelectType(typeID)
	if err != nil {
		return err
	}
	fmt.Printf("%s object %s added\n", obj.GeometryType, obj.ID)

	// Отправляем сразу, без сети объект просто остается в очереди
	if _, err := a.syncer.SyncObject(ctx, obj.ID); err != nil {
		a.log.Info("Object left pending", zap.String("object_id", obj.ID.String()), zap.Error(err))
	}
	return nil
}

func cmdCancel(ctx context.Context, a *app, args []string) error {
	switch a.placement.Mode().State {
	case journey.PlaceAwaitingType:
		return a.placement.CancelTypeSelect()
	default:
		return a.placement.CancelPlace()
	}
}

func parseObjectID(fs *flag.FlagSet, args []string, id *string) (uuid.UUID, error) {
	if err := fs.Parse(args); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(*id)
}

func updateObject(a *app, objectID uuid.UUID, patch journey.ObjectPatch) error {
	if a.store.Snapshot().FinishedJourney != nil {
		return a.store.UpdateObjectInFinishedJourney(objectID, patch)
	}
	return a.store.UpdateObject(objectID, patch)
}

func cmdEditObject(ctx context.Context, a *app, args []string) error {
	fs := newFlags("edit-object")
	id := fs.String("id", "", "object id (local or server)")
	title := fs.String("title", "", "object title")
	description := fs.String("description", "", "object description")
	typeID := fs.Int("type", 0, "hindrance type id")
	objectID, err := parseObjectID(fs, args, id)
	if err != nil {
		return err
	}

	set := visited(fs)
	var patch journey.ObjectPatch
	if set["title"] {
		patch.Title = title
	}
	if set["description"] {
		patch.Description = description
	}
	if set["type"] {
		patch.TypeID = typeID
	}
	return updateObject(a, objectID, patch)
}

func cmdDeleteObject(deleted bool) func(ctx context.Context, a *app, args []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		fs := newFlags("delete-object")
		id := fs.String("id", "", "object id (local or server)")
		objectID, err := parseObjectID(fs, args, id)
		if err != nil {
			return err
		}
		return updateObject(a, objectID, journey.ObjectPatch{Deleted: &deleted})
	}
}

func cmdEnd(ctx context.Context, a *app, args []string) error {
	if err := a.store.EndJourney(); err != nil {
		return err
	}
	fmt.Println("Journey ended. Review it with `pilot status`, then `pilot finalize` or `pilot undo-end`.")
	return nil
}

func cmdUndoEnd(ctx context.Context, a *app, args []string) error {
	return a.store.UndoEndJourney()
}

func cmdSync(ctx context.Context, a *app, args []string) error {
	synced, err := a.syncer.SyncPending(ctx)
	fmt.Printf("%d object(s) synced\n", synced)
	return err
}

func cmdFinalize(ctx context.Context, a *app, args []string) error {
	reportID, err := a.syncer.Finalize(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Report %s submitted\n", reportID)
	return nil
}

func cmdStatus(ctx context.Context, a *app, args []string) error {
	st := a.store.Snapshot()
	_, pending := a.store.PendingObjects()

	return printJSON(struct {
		*journey.State
		Pending int `json:"pendingObjects"`
	}{st, len(pending)})
}

func cmdTypes(ctx context.Context, a *app, args []string) error {
	types, err := a.client.GetObjectTypes(ctx)
	if err != nil {
		return err
	}
	return printJSON(types)
}

func cmdReport(ctx context.Context, a *app, args []string) error {
	fs := newFlags("report")
	id := fs.String("id", "", "report id")
	reportID, err := parseObjectID(fs, args, id)
	if err != nil {
		return err
	}
	report, err := a.client.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func cmdReset(ctx context.Context, a *app, args []string) error {
	return a.store.DeleteStore()
}
