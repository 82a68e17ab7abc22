/*
Package nttgen provides the control-path model of a pipelined number-theoretic
transform accelerator. It implements the cycle-accurate address and twiddle
sequencing of an in-place 256-point NTT engine with a four-coefficient
datapath, together with the modular arithmetic, root tables and tooling needed
to generate and validate the twiddle ROMs the engine consumes.
*/
package nttgen
