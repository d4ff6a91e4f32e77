// Package logging writes and reads couchsplit.log.
//
// Lines are slog text records with a local timestamp, one per event, tagged
// with the session, game, player or component that emitted them:
//
//	time="2025-03-01 18:22:10" level=INFO msg="profile ready" session_id=3f2a game=celeste player=1 profile=.Inky
//
// The file is appended to across runs and rotated by size, with older
// backups gzipped. [ReadFile] parses it back for the logs command.
//
//	logger, err := logging.NewLogger(layout.Root, cfg.LogLevel)
//	if err != nil {
//		return err
//	}
//	defer logger.Close()
//	logger.WithSession(id).WithGame("celeste").Info("starting session")
//
// Tests use [NopLogger] or [NewWriterLogger] over a bytes.Buffer.
package logging
