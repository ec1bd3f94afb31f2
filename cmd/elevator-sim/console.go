package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/eiannone/keyboard"

	"go-elevator-dispatch/pkg/sim"
)

// console is the interactive command surface. It reads raw key events and
// assembles them into lines so Ctrl+C works without a signal handler and
// the terminal never blocks the engine.
type console struct {
	engine *sim.Engine
}

func newConsole(engine *sim.Engine) *console {
	return &console{engine: engine}
}

func (c *console) run() {
	if err := keyboard.Open(); err != nil {
		slog.Error("cannot open keyboard, console disabled", "error", err)
		// Headless environment: block forever; the engine keeps running until
		// the process is terminated.
		select {}
	}
	defer keyboard.Close()

	keys, err := keyboard.GetKeys(10)
	if err != nil {
		slog.Error("cannot read keyboard", "error", err)
		return
	}

	c.printHelp()
	fmt.Print("> ")

	var line []rune
	for ev := range keys {
		if ev.Err != nil {
			slog.Error("keyboard error", "error", ev.Err)
			return
		}

		switch {
		case ev.Key == keyboard.KeyCtrlC || ev.Key == keyboard.KeyEsc:
			fmt.Println()
			return
		case ev.Key == keyboard.KeyEnter:
			fmt.Println()
			if !c.processCommand(strings.TrimSpace(string(line))) {
				return
			}
			line = line[:0]
			fmt.Print("> ")
		case ev.Key == keyboard.KeyBackspace || ev.Key == keyboard.KeyBackspace2:
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Print("\b \b")
			}
		case ev.Key == keyboard.KeySpace:
			line = append(line, ' ')
			fmt.Print(" ")
		case ev.Rune != 0:
			line = append(line, ev.Rune)
			fmt.Printf("%c", ev.Rune)
		}
	}
}

func (c *console) printHelp() {
	fmt.Println()
	fmt.Println("=== Elevator Simulation Console ===")
	fmt.Println("Commands:")
	fmt.Println("  hall <floor> <u|d>  - Hall call (e.g. 'hall 5 u')")
	fmt.Println("  car <elev> <floor>  - Car call (e.g. 'car 0 8')")
	fmt.Println("  status              - Print current status")
	fmt.Println("  help                - Show this help")
	fmt.Println("  quit                - Exit simulation")
	fmt.Println()
}

// processCommand returns false when the console should exit.
func (c *console) processCommand(line string) bool {
	if line == "" {
		return true
	}
	fields := strings.Fields(line)

	switch fields[0] {
	case "hall":
		if !c.parseHallCall(fields[1:]) {
			fmt.Println("Usage: hall <floor> <u|d>")
		}
	case "car":
		if !c.parseCarCall(fields[1:]) {
			fmt.Println("Usage: car <elevator_id> <floor>")
		}
	case "status":
		c.printStatus()
	case "help":
		c.printHelp()
	case "quit", "exit", "q":
		return false
	default:
		fmt.Printf("Unknown command: %s. Type 'help' for usage.\n", fields[0])
	}
	return true
}

func (c *console) parseHallCall(args []string) bool {
	if len(args) != 2 {
		return false
	}
	floor, err := strconv.Atoi(args[0])
	if err != nil {
		return false
	}

	var dir sim.Direction
	switch strings.ToLower(args[1]) {
	case "u", "up":
		dir = sim.DirUp
	case "d", "down":
		dir = sim.DirDown
	default:
		return false
	}

	if err := c.engine.RequestHallCall(floor, dir); err != nil {
		fmt.Println("Rejected:", err)
	}
	return true
}

func (c *console) parseCarCall(args []string) bool {
	if len(args) != 2 {
		return false
	}
	carID, err := strconv.Atoi(args[0])
	if err != nil {
		return false
	}
	floor, err := strconv.Atoi(args[1])
	if err != nil {
		return false
	}

	if err := c.engine.RequestCarCall(carID, floor); err != nil {
		fmt.Println("Rejected:", err)
	}
	return true
}

func (c *console) printStatus() {
	fmt.Printf("\n========== Status at Tick %d ==========\n", c.engine.CurrentTick())

	for _, car := range c.engine.CarSnapshots() {
		fmt.Printf("Elevator %d: Floor %d, %s, %s, passengers %d",
			car.ID, car.Floor, car.State, car.Direction, car.PassengerCount)
		if len(car.CarCalls) > 0 {
			fmt.Printf(", CarCalls: %v", car.CarCalls)
		}
		fmt.Println()
	}

	if calls := c.engine.HallCalls(); len(calls) > 0 {
		fmt.Print("Hall Calls: ")
		for _, call := range calls {
			fmt.Printf("%d%c ", call.Floor, call.Dir[0])
		}
		fmt.Println()
	}
	fmt.Println("========================================")
}
