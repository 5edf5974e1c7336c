// Package logging connects drivers to structured loggers.
//
// Zerolog and Logrus adapt the two loggers to driver.Logger. NewObserver
// records every command execution as one zerolog event. Setup and
// SetupLogrus build loggers from a LogConfig, rotating log files with
// lumberjack.
//
//	cfg := logging.DefaultLogConfig().ApplyEnv() // SLAVE_LOG_LEVEL, SLAVE_LOG_FORMAT
//	log, closer, err := logging.Setup(cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer closer.Close()
//
//	d := driver.New(t, root,
//	    driver.WithLogger(logging.Zerolog(log)),
//	    driver.WithObserver(logging.NewObserver(log)),
//	)
package logging
