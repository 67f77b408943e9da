package consts

const (
	DefaultVoltage    = 12.0 // Source voltage after reset (V)
	DefaultResistance = 10.0 // Resistance of the reset resistor (Ohm)

	BulbLowResistance  = 10.0 // Ohm
	BulbMidResistance  = 15.0 // Ohm
	BulbHighResistance = 20.0 // Ohm

	MaxResistance = 1000.0 // Upper bound accepted from the UI (Ohm)
	MaxVoltage    = 24.0   // Upper bound accepted from the UI (V)

	MinBrightnessPower = 0.1 // Floor for brightness normalization (W)

	MaxSweepPoints = 10000 // Points a single DC sweep may request
)
