package dnsmsg

import "strconv"

// String returns the mnemonic name of a DNS RR type, falling back to its
// numeric value for anything not in StringToType.
func (t Type) String() string {
	for name, v := range StringToType {
		if v == t {
			return name
		}
	}
	return "TYPE" + strconv.Itoa(int(t))
}

// String returns the mnemonic name of a DNS class, falling back to its
// numeric value for anything unrecognized.
func (c Class) String() string {
	switch c {
	case IN:
		return "IN"
	case CS:
		return "CS"
	case CH:
		return "CH"
	case HS:
		return "HS"
	}
	return "CLASS" + strconv.Itoa(int(c))
}

// String returns the mnemonic name of a DNS opcode.
func (o OpCode) String() string {
	switch o {
	case Query:
		return "Query"
	case IQuery:
		return "IQuery"
	case Status:
		return "Status"
	}
	return "OPCODE" + strconv.Itoa(int(o))
}
