// Package driver provides declarative instrument commands and binds them to
// a transport.
//
// # Overview
//
// A Command pairs a query header and/or a write header with the types of its
// arguments and response values. Querying sends the query header, splits the
// reply and decodes each token. Writing validates and encodes the arguments,
// then sends them after the write header. A Command keeps no state between
// calls; everything it knows is fixed at declaration.
//
// # Declaring Commands
//
//	idn := driver.Query("*IDN?", types.String{})
//	reset := driver.Write("*RST")
//	position := driver.ReadWrite("POS?", "POS",
//	    types.Integer{Min: types.Bound(0), Max: types.Bound(100)})
//
// The helpers panic on malformed declarations. NewCommand returns the error
// instead, which suits declarations loaded at run time (see the catalog
// package):
//
//	cmd, err := driver.NewCommand(driver.Spec{
//	    Query:    "SNAP?",
//	    Response: []types.Type{types.Float{}, types.Float{}},
//	})
//
// # Running Commands
//
// Commands run directly against any transport:
//
//	err := position.Write(ctx, t, 42)
//	value, err := position.Query(ctx, t) // 42
//
// A query with several response types returns []any:
//
//	xy, _ := snap.Query(ctx, t)
//	x, y := xy.([]any)[0].(float64), xy.([]any)[1].(float64)
//
// # Command Groups
//
// A Group names commands and nests other groups. A Driver binds a group to a
// transport and addresses commands by dotted path:
//
//	root := driver.NewGroup("generator")
//	root.Add("idn", idn)
//
//	source := driver.NewGroup("source")
//	source.Add("frequency", driver.ReadWrite(":SOUR:FREQ?", ":SOUR:FREQ", types.Float{}))
//	root.Attach(source)
//
//	d := driver.New(t, root)
//	d.Set(ctx, "source.frequency", 1e3)
//	f, _ := d.Get(ctx, "source.frequency")
//
// Commands repeated per channel form a sequence, addressed by index.
// Negative indices count from the end:
//
//	root.AddSequence("gain", gain1, gain2, gain3)
//	d.Set(ctx, "gain.-1", 7)            // last channel
//	all, _ := d.GetAll(ctx, "gain")     // every channel
//
// Merge adds an optional command set to an existing group's namespace:
//
//	if hasOptionBoard {
//	    root.Merge(optionBoardCommands)
//	}
//
// # Configuration Options
//
//	d := driver.New(t, root,
//	    driver.WithConfig(protocol.SignalRecovery()),
//	    driver.WithLogger(logging.Zerolog(log)),
//	    driver.WithObserver(metrics.New(prometheus.DefaultRegisterer)),
//	)
//
// # Error Handling
//
// Argument problems are detected before any I/O:
//
//	err := position.Write(ctx, t, 150)
//	if types.IsValidationError(err) { ... }  // out of range, nothing sent
//	if protocol.IsArityError(err) { ... }    // wrong number of arguments
//
// Response problems surface as *types.ParseError. Transport failures are
// returned unchanged. ErrNotQueryable, ErrNotWritable and ErrUnknownCommand
// are matched with errors.Is.
package driver
