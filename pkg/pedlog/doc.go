// Package pedlog provides parsing and monitoring of Entropia Universe
// chat logs, with per-session hunting economics.
//
// This package allows you to:
//   - Parse chat log lines into structured events
//   - Monitor the chat log in real-time for new events
//   - Track session cost, return and kill counts as events arrive
//
// # Basic Usage
//
// To monitor the chat log in real-time with session tracking:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	events, errs, err := pedlog.Watch(ctx,
//	    pedlog.WithLocalPlayer("Jane Doe Hunter"),
//	    pedlog.WithSession(session.ActivityHunting, 0.0306),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    select {
//	    case ev, ok := <-events:
//	        if !ok {
//	            return
//	        }
//	        switch ev := ev.(type) {
//	        case event.Loot:
//	            fmt.Printf("looted %s x%d (%.2f PED)\n", ev.ItemName, ev.Quantity, ev.Value)
//	        case event.Global:
//	            fmt.Printf("global: %s killed %s for %.0f PED\n", ev.Player, ev.Target, ev.Value)
//	        }
//	    case err, ok := <-errs:
//	        if !ok {
//	            return
//	        }
//	        log.Printf("error: %v", err)
//	    }
//	}
//
// To parse a single log line:
//
//	ev, err := pedlog.ParseLine(line)
//	if err != nil {
//	    log.Printf("parse error: %v", err)
//	} else if ev != nil {
//	    // process event
//	}
//
// # Platform Support
//
// Chat log paths are auto-detected from the standard install locations
// on Windows; on other platforms pass WithLogPath or set the
// PEDLOG_CHATLOG environment variable.
//
// # Disclaimer
//
// This is an unofficial tool and is not affiliated with MindArk PE AB.
package pedlog
