package main

import (
	"context"
	"fmt"

	"github.com/Saifkhan77806/LoveTown/internal/app"
	"github.com/Saifkhan77806/LoveTown/internal/realtime"
	"github.com/Saifkhan77806/LoveTown/internal/service/chat"
	"github.com/Saifkhan77806/LoveTown/internal/service/match"
	"github.com/Saifkhan77806/LoveTown/internal/service/relationship"
)

type services struct {
	matchmaker *match.Matchmaker
	machine    *relationship.Machine
	chat       *chat.Service
	hub        *realtime.Hub
}

// wire builds the services and starts the hub on hubCtx. The hub becomes the
// notifier before freeze timers are re-armed, since an expired freeze fires
// as soon as it is restored.
func wire(ctx, hubCtx context.Context, appCtx *app.AppContext) (*services, error) {
	matchmaker := match.NewMatchmaker(appCtx)
	machine := relationship.NewMachine(appCtx, matchmaker)
	chatSvc := chat.NewService(appCtx, machine)

	hub := realtime.NewHub(chatSvc, appCtx.Presence, appCtx.Logger)
	appCtx.Notifier = hub
	go hub.Run(hubCtx)

	restored, err := machine.RestoreFreezeTimers(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore freeze timers: %w", err)
	}
	appCtx.Logger.Info("freeze timers restored", "count", restored)

	return &services{matchmaker: matchmaker, machine: machine, chat: chatSvc, hub: hub}, nil
}
