// Package logger builds *slog.Logger values from functional options and
// keeps attribute names consistent across the module.
//
//	log := logger.New(
//		logger.WithEnvironment("development", "targetdesk"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "logged in", logger.StaffID(nip), logger.Branch(branch))
//
// Attribute helpers return an empty slog.Attr for empty input, which slog
// omits from the output.
package logger
