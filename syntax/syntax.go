// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

// Package syntax parses Thrift IDL source into a Document. Names in a
// Document are not resolved; that is done by package linker.
package syntax

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

type ParseOption interface {
	apply(*ParseOptions)
}

type parseOption func(*ParseOptions)

func (fn parseOption) apply(opts *ParseOptions) {
	fn(opts)
}

// WithLocation sets the include root and relative path recorded in every
// Location of the parsed document.
func WithLocation(base, path string) ParseOption {
	return parseOption(func(opts *ParseOptions) {
		opts.base = base
		opts.path = path
	})
}

func Parse(src []byte, opts ...ParseOption) (*Document, error) {
	return NewParseOptions(opts...).ParseDocument(src)
}

type ParseOptions struct {
	base string
	path string
}

func NewParseOptions(opts ...ParseOption) *ParseOptions {
	parseOpts := &ParseOptions{}
	for _, opt := range opts {
		opt.apply(parseOpts)
	}
	return parseOpts
}

func (opts *ParseOptions) ParseDocument(src []byte) (*Document, error) {
	ctx := newParseCtx(opts, src)
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, ctx.locateError(err)
	}
	ctx.tokens = tokens
	doc := parseDocument(ctx)
	if ctx.err != nil {
		return nil, ctx.locateError(ctx.err)
	}
	return doc, nil
}

type parseCtx struct {
	opts       *ParseOptions
	src        []byte
	lineStarts []uint32
	tokens     *Tokens
	haveToken  bool
	token      Token
	offset     uint32
	consumed   uint32
	doc        string
	err        error
}

func newParseCtx(opts *ParseOptions, src []byte) *parseCtx {
	lineStarts := []uint32{0}
	for ii, c := range src {
		if c == '\n' {
			lineStarts = append(lineStarts, uint32(ii+1))
		}
	}
	return &parseCtx{
		opts:       opts,
		src:        src,
		lineStarts: lineStarts,
	}
}

func (ctx *parseCtx) location(offset uint32) Location {
	idx, found := slices.BinarySearch(ctx.lineStarts, offset)
	if !found {
		idx--
	}
	return Location{
		Base:   ctx.opts.base,
		Path:   ctx.opts.path,
		Line:   idx + 1,
		Column: int(offset-ctx.lineStarts[idx]) + 1,
	}
}

func (ctx *parseCtx) locateError(err error) error {
	if synErr, ok := err.(*Error); ok {
		synErr.location = ctx.location(synErr.span.start)
	}
	return err
}

// ensureToken loads the next significant token, skipping whitespace and
// comments. The most recent doc comment is kept until a token is consumed.
func (ctx *parseCtx) ensureToken() error {
	if ctx.err != nil {
		return ctx.err
	}
	if ctx.haveToken {
		return nil
	}
	for {
		if err := ctx.tokens.Next(&ctx.token); err != nil {
			ctx.err = err
			return ctx.err
		}
		ctx.offset = ctx.tokens.offset - uint32(ctx.token.Len)
		switch ctx.token.Kind {
		case T_SPACE, T_NEWLINE, T_COMMENT, T_BLOCK_COMMENT:
			continue
		case T_DOC_COMMENT:
			ctx.doc = docText(string(ctx.readToken()))
			continue
		}
		ctx.haveToken = true
		return nil
	}
}

func (ctx *parseCtx) readToken() []byte {
	return ctx.src[ctx.offset : ctx.offset+uint32(ctx.token.Len)]
}

func (ctx *parseCtx) consumeToken() {
	ctx.consumed += uint32(ctx.token.Len)
	ctx.haveToken = false
	ctx.doc = ""
}

func (ctx *parseCtx) tokenSpan() Span {
	return Span{
		start: ctx.offset,
		len:   uint32(ctx.token.Len),
	}
}

func (ctx *parseCtx) tokenLocation() Location {
	return ctx.location(ctx.offset)
}

func (ctx *parseCtx) loop(yield func(struct{}) bool) {
	if ctx.err != nil {
		return
	}
	for {
		consumed := ctx.consumed
		if !yield(struct{}{}) {
			return
		}
		if ctx.err != nil {
			return
		}
		if consumed == ctx.consumed {
			return
		}
	}
}

// docComment returns the doc comment preceding the current token.
func (ctx *parseCtx) docComment() string {
	if err := ctx.ensureToken(); err != nil {
		return ""
	}
	doc := ctx.doc
	ctx.doc = ""
	return doc
}

func (ctx *parseCtx) peek(kind TokenKind) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	return ctx.token.Kind == kind
}

func (ctx *parseCtx) sigil(kind TokenKind) {
	if err := ctx.ensureToken(); err != nil {
		return
	}
	if ctx.token.Kind != kind {
		ctx.err = errExpectedSigil(
			kind,
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
		return
	}
	ctx.consumeToken()
}

func (ctx *parseCtx) trySigil(kind TokenKind) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	if ctx.token.Kind != kind {
		return false
	}
	ctx.consumeToken()
	return true
}

func (ctx *parseCtx) tryKeyword(keyword string) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	if ctx.token.Kind != T_IDENT {
		return false
	}
	if string(ctx.readToken()) != keyword {
		return false
	}
	ctx.consumeToken()
	return true
}

// listSeparator consumes an optional ',' or ';'.
func (ctx *parseCtx) listSeparator() {
	if !ctx.trySigil(T_COMMA) {
		ctx.trySigil(T_SEMICOLON)
	}
}

func (ctx *parseCtx) ident() string {
	if err := ctx.ensureToken(); err != nil {
		return ""
	}
	token := string(ctx.readToken())
	if ctx.token.Kind != T_IDENT {
		ctx.err = errExpectedIdent(ctx.token.Kind, token, ctx.tokenSpan())
		return ""
	}
	ctx.consumeToken()
	return token
}

func (ctx *parseCtx) int() (int64, bool) {
	if err := ctx.ensureToken(); err != nil {
		return 0, false
	}
	token := string(ctx.readToken())
	switch ctx.token.Kind {
	case T_INT_LIT, T_HEX_INT_LIT:
	default:
		ctx.err = errExpectedIntLit(ctx.token.Kind, token, ctx.tokenSpan())
		return 0, false
	}
	value, err := parseIntLit(token, ctx.token.Kind, ctx.tokenSpan())
	if err != nil {
		ctx.err = err
		return 0, false
	}
	ctx.consumeToken()
	return value, true
}

func (ctx *parseCtx) text() (string, bool) {
	if err := ctx.ensureToken(); err != nil {
		return "", false
	}
	token := string(ctx.readToken())
	if ctx.token.Kind != T_TEXT_LIT {
		ctx.err = errExpectedTextLit(ctx.token.Kind, token, ctx.tokenSpan())
		return "", false
	}
	value, err := parseTextLit(token, ctx.token.flags, ctx.tokenSpan())
	if err != nil {
		ctx.err = err
		return "", false
	}
	ctx.consumeToken()
	return value, true
}

func parseIntLit(token string, kind TokenKind, span Span) (int64, error) {
	digits := token
	negative := false
	switch digits[0] {
	case '-':
		negative = true
		digits = digits[1:]
	case '+':
		digits = digits[1:]
	}
	base := 10
	if kind == T_HEX_INT_LIT {
		base = 16
		digits = digits[2:]
	}
	value, err := strconv.ParseUint(digits, base, 64)
	if negative {
		if err != nil || value > uint64(math.MaxInt64)+1 {
			return 0, errIntLitTooNegative(token, span)
		}
		return int64(-value), nil
	}
	if err != nil || value > math.MaxInt64 {
		return 0, errIntLitTooPositive(token, span)
	}
	return int64(value), nil
}

func parseTextLit(token string, flags uint8, span Span) (string, error) {
	value := token[1 : len(token)-1]
	if flags&tokenFlagTextHasNoEscapes != 0 {
		return value, nil
	}
	var buf strings.Builder
	escaped := false
	for ii := 0; ii < len(value); ii++ {
		c := value[ii]
		if !escaped {
			if c == '\\' {
				escaped = true
			} else {
				buf.WriteByte(c)
			}
			continue
		}
		escaped = false
		switch c {
		case '"', '\'', '\\':
			buf.WriteByte(c)
		case 'n':
			buf.WriteByte('\n')
		case 'r':
			buf.WriteByte('\r')
		case 't':
			buf.WriteByte('\t')
		default:
			return "", errTextLitInvalid(token, span)
		}
	}
	return buf.String(), nil
}

func docText(raw string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "/**"), "*/")
	lines := strings.Split(body, "\n")
	for ii, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines[ii] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func parseDocument(ctx *parseCtx) *Document {
	doc := &Document{
		Location: Location{
			Base: ctx.opts.base,
			Path: ctx.opts.path,
		},
	}
	sawDefinition := false
	for _ = range ctx.loop {
		if err := ctx.ensureToken(); err != nil {
			return nil
		}
		if ctx.token.Kind == T_EOF {
			break
		}
		token := string(ctx.readToken())
		span := ctx.tokenSpan()
		if ctx.token.Kind != T_IDENT {
			ctx.err = errExpectedDeclaration(ctx.token.Kind, token, span)
			return nil
		}

		switch token {
		case "include", "cpp_include", "namespace":
			if sawDefinition {
				ctx.err = errHeaderAfterDefinition(token, span)
				return nil
			}
		case "typedef", "const", "enum", "struct", "union", "exception", "service":
			sawDefinition = true
		case "senum":
			ctx.err = errSenumUnsupported(span)
			return nil
		default:
			ctx.err = errUnknownDeclaration(token, span)
			return nil
		}

		switch token {
		case "include":
			if include := parseInclude(ctx); include != nil {
				doc.Includes = append(doc.Includes, include)
			}
		case "cpp_include":
			if include := parseInclude(ctx); include != nil {
				doc.CppIncludes = append(doc.CppIncludes, include)
			}
		case "namespace":
			if ns := parseNamespace(ctx); ns != nil {
				doc.Namespaces = append(doc.Namespaces, ns)
			}
		case "typedef":
			if decl := parseTypedef(ctx); decl != nil {
				doc.Typedefs = append(doc.Typedefs, decl)
			}
		case "const":
			if decl := parseConst(ctx); decl != nil {
				doc.Consts = append(doc.Consts, decl)
			}
		case "enum":
			if decl := parseEnum(ctx); decl != nil {
				doc.Enums = append(doc.Enums, decl)
			}
		case "struct":
			if decl := parseStruct(ctx, StructKindStruct); decl != nil {
				doc.Structs = append(doc.Structs, decl)
			}
		case "union":
			if decl := parseStruct(ctx, StructKindUnion); decl != nil {
				doc.Unions = append(doc.Unions, decl)
			}
		case "exception":
			if decl := parseStruct(ctx, StructKindException); decl != nil {
				doc.Exceptions = append(doc.Exceptions, decl)
			}
		case "service":
			if decl := parseService(ctx); decl != nil {
				doc.Services = append(doc.Services, decl)
			}
		}
		ctx.listSeparator()
	}
	if ctx.err != nil {
		return nil
	}
	return doc
}

func parseInclude(ctx *parseCtx) *Include {
	loc := ctx.tokenLocation()
	ctx.consumeToken()
	path, ok := ctx.text()
	if !ok {
		return nil
	}
	return &Include{
		Location: loc,
		Path:     path,
	}
}

func parseNamespace(ctx *parseCtx) *Namespace {
	loc := ctx.tokenLocation()
	ctx.consumeToken()

	var scope string
	if ctx.trySigil(T_STAR) {
		scope = "*"
	} else {
		scope = ctx.ident()
	}
	if ctx.err != nil {
		return nil
	}

	var name string
	if ctx.peek(T_TEXT_LIT) {
		name, _ = ctx.text()
	} else {
		name = ctx.ident()
	}
	annotations := parseAnnotations(ctx)
	if ctx.err != nil {
		return nil
	}
	return &Namespace{
		Location:    loc,
		Scope:       scope,
		Name:        name,
		Annotations: annotations,
	}
}

func parseTypedef(ctx *parseCtx) *Typedef {
	doc := ctx.docComment()
	loc := ctx.tokenLocation()
	ctx.consumeToken()
	typeRef := parseType(ctx)
	name := ctx.ident()
	annotations := parseAnnotations(ctx)
	if ctx.err != nil {
		return nil
	}
	return &Typedef{
		Location:    loc,
		Doc:         doc,
		Name:        name,
		Type:        typeRef,
		Annotations: annotations,
	}
}

func parseConst(ctx *parseCtx) *Const {
	doc := ctx.docComment()
	loc := ctx.tokenLocation()
	ctx.consumeToken()
	typeRef := parseType(ctx)
	name := ctx.ident()
	ctx.sigil(T_EQ)
	value := parseConstValue(ctx)
	annotations := parseAnnotations(ctx)
	if ctx.err != nil {
		return nil
	}
	return &Const{
		Location:    loc,
		Doc:         doc,
		Name:        name,
		Type:        typeRef,
		Value:       value,
		Annotations: annotations,
	}
}

func parseEnum(ctx *parseCtx) *Enum {
	doc := ctx.docComment()
	loc := ctx.tokenLocation()
	ctx.consumeToken()
	decl := &Enum{
		Location: loc,
		Doc:      doc,
		Name:     ctx.ident(),
	}
	ctx.sigil(T_OPEN_CURL)

	next := int64(0)
	for _ = range ctx.loop {
		if ctx.trySigil(T_CLOSE_CURL) {
			decl.Annotations = parseAnnotations(ctx)
			break
		}
		member := &EnumMember{
			Doc:      ctx.docComment(),
			Location: ctx.tokenLocation(),
		}
		nameSpan := ctx.tokenSpan()
		member.Name = ctx.ident()
		value := next
		if ctx.trySigil(T_EQ) {
			span := ctx.tokenSpan()
			token := string(ctx.readToken())
			var ok bool
			if value, ok = ctx.int(); !ok {
				return nil
			}
			if value < math.MinInt32 || value > math.MaxInt32 {
				ctx.err = errEnumValueOutOfRange(token, span)
				return nil
			}
		} else {
			member.ImplicitValue = true
			if value > math.MaxInt32 {
				ctx.err = errEnumValueOutOfRange(strconv.FormatInt(value, 10), nameSpan)
				return nil
			}
		}
		member.Value = int32(value)
		next = value + 1
		member.Annotations = parseAnnotations(ctx)
		ctx.listSeparator()
		if ctx.err != nil {
			return nil
		}
		decl.Members = append(decl.Members, member)
	}
	if ctx.err != nil {
		return nil
	}
	return decl
}

func parseStruct(ctx *parseCtx, kind StructKind) *Struct {
	doc := ctx.docComment()
	loc := ctx.tokenLocation()
	ctx.consumeToken()
	decl := &Struct{
		Location: loc,
		Doc:      doc,
		Kind:     kind,
		Name:     ctx.ident(),
	}
	ctx.tryKeyword("xsd_all")
	ctx.sigil(T_OPEN_CURL)
	decl.Fields = parseFields(ctx, T_CLOSE_CURL)
	decl.Annotations = parseAnnotations(ctx)
	if ctx.err != nil {
		return nil
	}
	return decl
}

func parseService(ctx *parseCtx) *Service {
	doc := ctx.docComment()
	loc := ctx.tokenLocation()
	ctx.consumeToken()
	decl := &Service{
		Location: loc,
		Doc:      doc,
		Name:     ctx.ident(),
	}
	if ctx.tryKeyword("extends") {
		if err := ctx.ensureToken(); err != nil {
			return nil
		}
		decl.ExtendsLocation = ctx.tokenLocation()
		decl.Extends = ctx.ident()
	}
	ctx.sigil(T_OPEN_CURL)
	for _ = range ctx.loop {
		if ctx.trySigil(T_CLOSE_CURL) {
			decl.Annotations = parseAnnotations(ctx)
			break
		}
		if fn := parseFunction(ctx); fn != nil {
			decl.Functions = append(decl.Functions, fn)
		}
	}
	if ctx.err != nil {
		return nil
	}
	return decl
}

func parseFunction(ctx *parseCtx) *Function {
	fn := &Function{
		Doc:      ctx.docComment(),
		Location: ctx.tokenLocation(),
	}
	fn.Oneway = ctx.tryKeyword("oneway")
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	if ctx.token.Kind != T_IDENT {
		ctx.err = errExpectedFunctionType(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
		return nil
	}
	fn.ReturnType = parseType(ctx)
	fn.Name = ctx.ident()
	ctx.sigil(T_OPEN_PAREN)
	fn.Params = parseFields(ctx, T_CLOSE_PAREN)
	if ctx.tryKeyword("throws") {
		ctx.sigil(T_OPEN_PAREN)
		fn.Throws = parseFields(ctx, T_CLOSE_PAREN)
	}
	fn.Annotations = parseAnnotations(ctx)
	ctx.listSeparator()
	if ctx.err != nil {
		return nil
	}
	return fn
}

// parseFields reads fields up to and including the closing sigil. Fields
// without an explicit ID are numbered after the highest ID seen so far.
func parseFields(ctx *parseCtx, closing TokenKind) []*Field {
	var fields []*Field
	var maxID int16
	for _ = range ctx.loop {
		if ctx.trySigil(closing) {
			break
		}
		field := &Field{
			Doc:      ctx.docComment(),
			Location: ctx.tokenLocation(),
		}
		if ctx.peek(T_INT_LIT) || ctx.peek(T_HEX_INT_LIT) {
			token := string(ctx.readToken())
			span := ctx.tokenSpan()
			id, ok := ctx.int()
			if !ok {
				return nil
			}
			if id < 1 || id > math.MaxInt16 {
				ctx.err = errFieldIDOutOfRange(token, span)
				return nil
			}
			ctx.sigil(T_COLON)
			field.ID = int16(id)
		} else {
			if maxID == math.MaxInt16 {
				ctx.err = errFieldIDOutOfRange(
					strconv.Itoa(math.MaxInt16+1),
					ctx.tokenSpan(),
				)
				return nil
			}
			field.ID = maxID + 1
			field.ImplicitID = true
		}
		maxID = max(maxID, field.ID)

		if ctx.tryKeyword("required") {
			field.Requiredness = Required
		} else if ctx.tryKeyword("optional") {
			field.Requiredness = Optional
		}
		field.Type = parseType(ctx)
		field.Name = ctx.ident()
		if ctx.trySigil(T_EQ) {
			field.Default = parseConstValue(ctx)
		}
		field.Annotations = parseAnnotations(ctx)
		ctx.listSeparator()
		if ctx.err != nil {
			return nil
		}
		fields = append(fields, field)
	}
	return fields
}

func parseType(ctx *parseCtx) *TypeRef {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())
	if ctx.token.Kind != T_IDENT {
		ctx.err = errExpectedTypeName(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
	ref := &TypeRef{
		Location: ctx.tokenLocation(),
	}
	ctx.consumeToken()

	switch token {
	case "list", "set":
		ref.Kind = ListTypeRef
		if token == "set" {
			ref.Kind = SetTypeRef
		}
		ctx.sigil(T_LT)
		ref.Elem = parseType(ctx)
		ctx.sigil(T_GT)
		if ctx.err != nil {
			return nil
		}
		ref.Name = containerName(ref.Kind, ref.Elem, nil, nil)
	case "map":
		ref.Kind = MapTypeRef
		ctx.sigil(T_LT)
		ref.Key = parseType(ctx)
		ctx.sigil(T_COMMA)
		ref.Value = parseType(ctx)
		ctx.sigil(T_GT)
		if ctx.err != nil {
			return nil
		}
		ref.Name = containerName(ref.Kind, nil, ref.Key, ref.Value)
	default:
		ref.Kind = NamedTypeRef
		ref.Name = token
	}
	if ref.Kind != NamedTypeRef && ctx.tryKeyword("cpp_type") {
		ctx.text()
	}
	ref.Annotations = parseAnnotations(ctx)
	if ctx.err != nil {
		return nil
	}
	return ref
}

func parseAnnotations(ctx *parseCtx) Annotations {
	if !ctx.trySigil(T_OPEN_PAREN) {
		return nil
	}
	var annotations Annotations
	for _ = range ctx.loop {
		if ctx.trySigil(T_CLOSE_PAREN) {
			break
		}
		if err := ctx.ensureToken(); err != nil {
			return nil
		}
		ann := Annotation{
			Location: ctx.tokenLocation(),
			Name:     ctx.ident(),
			Value:    "1",
		}
		if ctx.trySigil(T_EQ) {
			ann.Value, _ = ctx.text()
		}
		ctx.listSeparator()
		if ctx.err != nil {
			return nil
		}
		annotations = append(annotations, ann)
	}
	return annotations
}

func parseConstValue(ctx *parseCtx) ConstValue {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	loc := ctx.tokenLocation()
	token := string(ctx.readToken())
	switch ctx.token.Kind {
	case T_INT_LIT, T_HEX_INT_LIT:
		value, ok := ctx.int()
		if !ok {
			return nil
		}
		return &IntValue{Loc: loc, Value: value}
	case T_DOUBLE_LIT:
		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			ctx.err = errDoubleLitInvalid(token, ctx.tokenSpan())
			return nil
		}
		ctx.consumeToken()
		return &DoubleValue{Loc: loc, Value: value}
	case T_TEXT_LIT:
		value, ok := ctx.text()
		if !ok {
			return nil
		}
		return &StringValue{Loc: loc, Value: value}
	case T_IDENT:
		ctx.consumeToken()
		return &IdentifierValue{Loc: loc, Name: token}
	case T_OPEN_SQUARE:
		ctx.consumeToken()
		list := &ListValue{Loc: loc}
		for _ = range ctx.loop {
			if ctx.trySigil(T_CLOSE_SQUARE) {
				break
			}
			elem := parseConstValue(ctx)
			ctx.listSeparator()
			if ctx.err != nil {
				return nil
			}
			list.Elements = append(list.Elements, elem)
		}
		if ctx.err != nil {
			return nil
		}
		return list
	case T_OPEN_CURL:
		ctx.consumeToken()
		m := &MapValue{Loc: loc}
		for _ = range ctx.loop {
			if ctx.trySigil(T_CLOSE_CURL) {
				break
			}
			key := parseConstValue(ctx)
			ctx.sigil(T_COLON)
			value := parseConstValue(ctx)
			ctx.listSeparator()
			if ctx.err != nil {
				return nil
			}
			m.Entries = append(m.Entries, MapEntry{Key: key, Value: value})
		}
		if ctx.err != nil {
			return nil
		}
		return m
	default:
		ctx.err = errExpectedConstValue(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
}
