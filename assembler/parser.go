// Package assembler implements spec.md §4.B/§4.C: the symbol table and
// the two-pass assembler's first pass, which turns a token stream into
// an intermediate list of data and instruction entries plus a symbol
// table of labels and placeholders.
package assembler

import (
	"github.com/oconnor-ryan/ryvm-go/asmerr"
	"github.com/oconnor-ryan/ryvm-go/isa"
	"github.com/oconnor-ryan/ryvm-go/lexer"
	"github.com/oconnor-ryan/ryvm-go/wire"
)

type mode int

const (
	modeConfig mode = iota
	modeData
	modeText
)

// Parser drives Pass 1 over a token stream, grounded on the teacher's
// parser/parser.go statement-loop shape.
type Parser struct {
	lex  *lexer.Lexer
	errs *asmerr.List
	file string

	mode mode
	addr uint64

	maxStackSize    uint64
	maxStackSizeSet bool

	program *Program
}

// Parse runs Pass 1 over src and returns the resulting Program. On error
// the returned Program is nil and errs.HasErrors() is true.
func Parse(file, src string) (*Program, *asmerr.List) {
	errs := &asmerr.List{}
	lx := lexer.New(src, file, errs)
	p := &Parser{
		lex:  lx,
		errs: errs,
		file: file,
		program: &Program{
			Symbols: NewSymbolTable(),
		},
	}
	p.run()

	if errs.HasErrors() {
		return nil, errs
	}
	return p.program, errs
}

func (p *Parser) fail(pos asmerr.Position, format string, args ...any) {
	p.errs.Add(asmerr.Newf(pos, asmerr.ParseError, format, args...))
}

func (p *Parser) failResolve(pos asmerr.Position, format string, args ...any) {
	p.errs.Add(asmerr.Newf(pos, asmerr.ResolveError, format, args...))
}

func (p *Parser) run() {
	for {
		if p.lex.Failed() {
			return
		}
		tok := p.lex.Next()

		switch tok.Kind {
		case lexer.TokEOF:
			p.finish()
			return

		case lexer.TokLF:
			continue

		case lexer.TokSectionMaxStackSize:
			p.parseMaxStackSize(tok)

		case lexer.TokSectionData:
			p.enterData(tok)

		case lexer.TokSectionText:
			p.enterText(tok)

		case lexer.TokLabel:
			p.bindLabel(tok)

		case lexer.TokSectionDataByte, lexer.TokSectionData2Byte,
			lexer.TokSectionData4Byte, lexer.TokSectionData8Byte:
			p.parseNumericDataDirective(tok)

		case lexer.TokSectionDataAsciz:
			p.parseAsciz(tok)

		case lexer.TokOpcode:
			p.parseInstruction(tok)

		default:
			p.fail(tok.Pos, "unexpected token %s", tok.Kind)
			p.skipToLineEnd()
		}

		if p.errs.HasErrors() && p.lex.Failed() {
			return
		}
	}
}

func (p *Parser) finish() {
	if p.mode == modeText {
		p.program.TextSize = p.addr - p.program.DataSize
	} else {
		p.fail(asmerr.Position{File: p.file}, "program is missing a required .text section")
	}

	for _, l := range p.program.Symbols.Undefined() {
		p.failResolve(l.referencedAt, "undefined label %q", l.Name)
	}
}

// skipToLineEnd consumes tokens until LF/EOF, used for error recovery
// within a single malformed statement so later statements can still be
// checked (spec.md treats assembly errors as fatal for the file, but
// collecting more than one per run gives a better diagnostic).
func (p *Parser) skipToLineEnd() {
	for {
		tok := p.lex.Next()
		if tok.Kind == lexer.TokLF || tok.Kind == lexer.TokEOF {
			if tok.Kind == lexer.TokEOF {
				p.lex.Push(tok)
			}
			return
		}
	}
}

func (p *Parser) expectLineEnd() {
	tok := p.lex.Next()
	if tok.Kind != lexer.TokLF && tok.Kind != lexer.TokEOF {
		p.fail(tok.Pos, "expected end of line, got %s", tok.Kind)
		p.skipToLineEnd()
		return
	}
	if tok.Kind == lexer.TokEOF {
		p.lex.Push(tok)
	}
}

func (p *Parser) parseMaxStackSize(tok lexer.Token) {
	if p.mode != modeConfig {
		p.fail(tok.Pos, ".max_stack_size may only appear before .data/.text")
		p.skipToLineEnd()
		return
	}
	if p.maxStackSizeSet {
		p.fail(tok.Pos, "duplicate .max_stack_size directive")
		p.skipToLineEnd()
		return
	}
	val := p.lex.Next()
	if val.Kind != lexer.TokIntLiteral || val.IntVal < 0 {
		p.fail(val.Pos, "expected non-negative integer operand for .max_stack_size")
		p.skipToLineEnd()
		return
	}
	p.maxStackSize = uint64(val.IntVal)
	p.maxStackSizeSet = true
	p.program.MaxStackSize = p.maxStackSize
	p.program.MaxStackSizeSet = true
	p.expectLineEnd()
}

func (p *Parser) enterData(tok lexer.Token) {
	if p.mode != modeConfig {
		p.fail(tok.Pos, "duplicate or misplaced .data section")
		p.skipToLineEnd()
		return
	}
	p.mode = modeData
	p.expectLineEnd()
}

func (p *Parser) enterText(tok lexer.Token) {
	if p.mode == modeText {
		p.fail(tok.Pos, "duplicate .text section")
		p.skipToLineEnd()
		return
	}
	p.program.DataSize = p.addr
	p.mode = modeText
	p.expectLineEnd()
}

func (p *Parser) bindLabel(tok lexer.Token) {
	if p.mode == modeConfig {
		p.fail(tok.Pos, "labels may only appear in .data or .text")
		p.skipToLineEnd()
		return
	}
	if err := p.program.Symbols.Define(tok.Literal, p.addr, tok.Pos); err != nil {
		p.errs.Add(err.(*asmerr.Error))
	}
}

// appendData records entry in either the .data section list or the
// current .text section's ordered entry list, and advances the running
// address by the entry's width.
func (p *Parser) appendData(entry *DataEntry) {
	entry.RelativeAddress = p.addr
	if p.mode == modeData {
		p.program.Data = append(p.program.Data, entry)
	} else {
		p.program.Text = append(p.program.Text, TextEntry{Data: entry})
	}
	p.addr += entry.Width()
}

func (p *Parser) appendInstruction(inst *Instruction) {
	inst.RelativeAddress = p.addr
	p.program.Text = append(p.program.Text, TextEntry{Instruction: inst})
	p.addr += 4
}

var directiveTag = map[lexer.TokenKind]DataTag{
	lexer.TokSectionDataByte:  DataByte,
	lexer.TokSectionData2Byte: Data2Byte,
	lexer.TokSectionData4Byte: Data4Byte,
	lexer.TokSectionData8Byte: Data8Byte,
}

func (p *Parser) parseNumericDataDirective(tok lexer.Token) {
	if p.mode == modeConfig {
		p.fail(tok.Pos, "%s directive may only appear in .data or .text", tok.Literal)
		p.skipToLineEnd()
		return
	}
	tag := directiveTag[tok.Kind]

	count := 0
	for {
		item := p.lex.Next()
		switch item.Kind {
		case lexer.TokIntLiteral:
			entry := &DataEntry{Tag: tag, Value: uint64(item.IntVal), Pos: item.Pos}
			p.appendData(entry)
			count++

		case lexer.TokLabelPcOffExpr:
			label := p.program.Symbols.Reference(item.Literal, item.Pos)
			width := tag.ByteWidth() * 8
			entry := &DataEntry{
				Tag: tag,
				Placeholder: &Placeholder{
					Label: label,
					Kind:  PlaceholderPCRelative,
					Width: width,
					Pos:   item.Pos,
				},
				Pos: item.Pos,
			}
			p.appendData(entry)
			count++

		case lexer.TokLabelAdrOfExpr:
			label := p.program.Symbols.Reference(item.Literal, item.Pos)
			entry := &DataEntry{
				Tag: Data8Byte,
				Placeholder: &Placeholder{
					Label: label,
					Kind:  PlaceholderAddressOf,
					Width: 64,
					Pos:   item.Pos,
				},
				Pos: item.Pos,
			}
			p.appendData(entry)
			count++

		default:
			if count == 0 {
				p.fail(item.Pos, "expected integer literal or label reference after %s", tok.Literal)
			}
			if item.Kind == lexer.TokLF || item.Kind == lexer.TokEOF {
				if item.Kind == lexer.TokEOF {
					p.lex.Push(item)
				}
				return
			}
			p.fail(item.Pos, "unexpected token %s in %s list", item.Kind, tok.Literal)
			p.skipToLineEnd()
			return
		}

		// Peek for another list item; a line end terminates the list.
		next := p.lex.Next()
		if next.Kind == lexer.TokLF || next.Kind == lexer.TokEOF {
			if next.Kind == lexer.TokEOF {
				p.lex.Push(next)
			}
			return
		}
		p.lex.Push(next)
	}
}

func (p *Parser) parseAsciz(tok lexer.Token) {
	if p.mode == modeConfig {
		p.fail(tok.Pos, ".asciz may only appear in .data or .text")
		p.skipToLineEnd()
		return
	}
	str := p.lex.Next()
	if str.Kind != lexer.TokStringLiteral {
		p.fail(str.Pos, "expected string literal after .asciz")
		p.skipToLineEnd()
		return
	}
	bytes := append(unescape(str.Literal), 0)
	p.appendData(&DataEntry{Tag: DataAsciz, Text: bytes, Pos: str.Pos})
	p.expectLineEnd()
}

// unescape interprets the backslash escapes the lexer passed through
// untouched: \n \t \r \0 \\ \" ; anything else keeps both characters.
func unescape(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			out = append(out, s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '0':
			out = append(out, 0)
		case '\\':
			out = append(out, '\\')
		case '"':
			out = append(out, '"')
		default:
			out = append(out, s[i], s[i+1])
		}
		i++
	}
	return out
}

func (p *Parser) parseInstruction(tok lexer.Token) {
	if p.mode != modeText {
		p.fail(tok.Pos, "instructions may only appear in .text")
		p.skipToLineEnd()
		return
	}
	info, ok := isa.Lookup(tok.Literal)
	if !ok {
		p.fail(tok.Pos, "unknown opcode %q", tok.Literal)
		p.skipToLineEnd()
		return
	}

	inst := &Instruction{Op: info.Op, Format: info.Format, Pos: tok.Pos}
	inst.Bytes[0] = byte(info.Op)

	switch info.Format {
	case isa.FormatR0:
		p.parseR0Operand(inst)
	case isa.FormatR1:
		p.parseR1Operands(inst)
	case isa.FormatR2:
		p.parseR2Operands(inst)
	case isa.FormatR3:
		p.parseR3Operands(inst)
	}

	if p.errs.HasErrors() {
		return
	}
	p.appendInstruction(inst)
	p.expectLineEnd()
}

func (p *Parser) expectRegister() (lexer.Token, bool) {
	tok := p.lex.Next()
	if tok.Kind != lexer.TokRegister {
		p.fail(tok.Pos, "expected register operand, got %s", tok.Kind)
		p.skipToLineEnd()
		return tok, false
	}
	return tok, true
}

func (p *Parser) parseR0Operand(inst *Instruction) {
	tok := p.lex.Next()
	switch tok.Kind {
	case lexer.TokIntLiteral:
		b, err := wire.EncodeSigned(tok.IntVal, 24)
		if err != nil {
			p.fail(tok.Pos, "%s", err)
			return
		}
		copy(inst.Bytes[1:4], b)
	case lexer.TokLabelPcOffExpr:
		label := p.program.Symbols.Reference(tok.Literal, tok.Pos)
		inst.Placeholder = &Placeholder{Label: label, Kind: PlaceholderPCRelative, Width: 24, Pos: tok.Pos}
	default:
		p.fail(tok.Pos, "expected 24-bit integer literal or #label, got %s", tok.Kind)
		p.skipToLineEnd()
	}
}

func (p *Parser) parseR1Operands(inst *Instruction) {
	reg, ok := p.expectRegister()
	if !ok {
		return
	}
	inst.Bytes[1] = wire.EncodeRegisterOperand(reg.Reg.Index, reg.Reg.Width)

	tok := p.lex.Next()
	switch tok.Kind {
	case lexer.TokIntLiteral:
		b, err := wire.EncodeSigned(tok.IntVal, 16)
		if err != nil {
			p.fail(tok.Pos, "%s", err)
			return
		}
		copy(inst.Bytes[2:4], b)
	case lexer.TokLabelPcOffExpr:
		label := p.program.Symbols.Reference(tok.Literal, tok.Pos)
		inst.Placeholder = &Placeholder{Label: label, Kind: PlaceholderPCRelative, Width: 16, Pos: tok.Pos}
	default:
		p.fail(tok.Pos, "expected 16-bit integer literal or #label, got %s", tok.Kind)
		p.skipToLineEnd()
	}
}

func (p *Parser) parseR2Operands(inst *Instruction) {
	reg1, ok := p.expectRegister()
	if !ok {
		return
	}
	reg2, ok := p.expectRegister()
	if !ok {
		return
	}
	inst.Bytes[1] = wire.EncodeRegisterOperand(reg1.Reg.Index, reg1.Reg.Width)
	inst.Bytes[2] = wire.EncodeRegisterOperand(reg2.Reg.Index, reg2.Reg.Width)

	tok := p.lex.Next()
	switch tok.Kind {
	case lexer.TokIntLiteral:
		b, err := wire.EncodeSigned(tok.IntVal, 8)
		if err != nil {
			p.fail(tok.Pos, "%s", err)
			return
		}
		inst.Bytes[3] = b[0]
	case lexer.TokLabelPcOffExpr:
		label := p.program.Symbols.Reference(tok.Literal, tok.Pos)
		inst.Placeholder = &Placeholder{Label: label, Kind: PlaceholderPCRelative, Width: 8, Pos: tok.Pos}
	default:
		p.fail(tok.Pos, "expected 8-bit integer literal or #label, got %s", tok.Kind)
		p.skipToLineEnd()
	}
}

func (p *Parser) parseR3Operands(inst *Instruction) {
	reg1, ok := p.expectRegister()
	if !ok {
		return
	}
	reg2, ok := p.expectRegister()
	if !ok {
		return
	}
	reg3, ok := p.expectRegister()
	if !ok {
		return
	}
	inst.Bytes[1] = wire.EncodeRegisterOperand(reg1.Reg.Index, reg1.Reg.Width)
	inst.Bytes[2] = wire.EncodeRegisterOperand(reg2.Reg.Index, reg2.Reg.Width)
	inst.Bytes[3] = wire.EncodeRegisterOperand(reg3.Reg.Index, reg3.Reg.Width)
}
