package machine

// FallTable maps grounded or rising poses to the falling pose facing the same
// way
var FallTable = map[int]int{
	0x01: 0x29,
	0x02: 0x2A,
	0x09: 0x29,
	0x0A: 0x2A,
	0x0B: 0x67,
	0x0C: 0x68,
	0x13: 0x67,
	0x14: 0x68,
	0x4D: 0x29,
	0x4E: 0x2A,
	0x51: 0x67,
	0x52: 0x68,
}

// LandTable maps airborne poses to the landing pose facing the same way
var LandTable = map[int]int{
	0x29: 0xA4,
	0x2A: 0xA5,
	0x67: 0xE6,
	0x68: 0xE7,
	0x19: 0xA6,
	0x1A: 0xA7,
	0x1B: 0xA6,
	0x1C: 0xA7,
	0x81: 0xA6,
	0x82: 0xA7,
	0x13: 0xE6,
	0x14: 0xE7,
	0x4D: 0xA4,
	0x4E: 0xA5,
	0x51: 0xE6,
	0x52: 0xE7,
	0x87: 0xA5,
	0x88: 0xA4,
}
