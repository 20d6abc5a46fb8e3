// Package resolver bridges a documentation compiler to an out-of-process
// reference resolver. It owns the transport, performs the one-time
// handshake, caches every successful reply, and projects cached replies
// into host-facing documentation entities.
//
// The resolver promises the host "anything I minted, I can explain": a
// reference this resolver returned is always served from its cache, and a
// cache miss for such a reference is an unrecoverable wiring error.
package resolver

import (
	"fmt"
	"io"
	"net/url"

	"docbridge/internal/docmodel"
	"docbridge/internal/errors"
	"docbridge/internal/logging"
	"docbridge/internal/projection"
	"docbridge/internal/service"
	"docbridge/internal/transport"
	"docbridge/internal/wire"
)

// SyntheticSymbolBundleIdentifier tags references to externally resolved
// symbols so they can later be recognized as this resolver's.
const SyntheticSymbolBundleIdentifier = "com.externally.resolved.symbol"

// assetKey is the asset cache key
type assetKey struct {
	name             string
	bundleIdentifier string
}

// Resolver resolves external topic, symbol, and asset references through a
// transport to an out-of-process peer.
//
// Callers must serialize invocations: the transport maintains exactly one
// in-flight request. Cache entries are created on the first successful
// resolve and live until the resolver is closed; they are never evicted,
// invalidated, or updated.
type Resolver struct {
	bundleIdentifier string

	transport transport.Transport
	parser    docmodel.MarkupParser
	logger    *logging.Logger

	// closer releases the transport's resources, when it has any
	closer io.Closer

	// topicCache is keyed by the originally requested topic URL
	topicCache map[string]wire.ResolvedInformation

	// symbolCache is keyed by the precise symbol identifier
	symbolCache map[string]wire.ResolvedInformation

	// assetCache is keyed by asset name and bundle identifier
	assetCache map[assetKey]wire.DataAsset
}

// Option configures a resolver
type Option func(*Resolver)

// WithMarkupParser overrides the parser used for abstract markup
func WithMarkupParser(parser docmodel.MarkupParser) Option {
	return func(r *Resolver) { r.parser = parser }
}

// WithLogger attaches a logger
func WithLogger(logger *logging.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewFromExecutable spawns the resolver executable at the given path and
// performs the handshake: the child's first output must announce its bundle
// identifier. The error handler receives the child's stderr output.
func NewFromExecutable(path string, args []string, errorHandler transport.ErrorHandler, opts ...Option) (*Resolver, error) {
	r := newResolver("", opts...)

	t, err := transport.NewChildProcessTransport(path, args, errorHandler, r.logger)
	if err != nil {
		return nil, err
	}

	announced, err := handshake(t, path)
	if err != nil {
		_ = t.Close()
		return nil, err
	}

	r.bundleIdentifier = announced
	r.transport = t
	r.closer = t

	if r.logger != nil {
		r.logger.Info("External reference resolver announced its bundle", map[string]interface{}{
			"bundleIdentifier": r.bundleIdentifier,
			"path":             path,
		})
	}
	return r, nil
}

// NewFromService connects the resolver to an already-running documentation
// service. No handshake is performed; the primary bundle identifier is
// supplied by the caller and immutable afterwards.
func NewFromService(client service.Client, bundleIdentifier string, opts ...Option) *Resolver {
	r := newResolver(bundleIdentifier, opts...)
	r.transport = transport.NewServiceTransport(client)
	return r
}

// handshake reads the peer's one-time bundle announcement. It must be the
// first value ever read from the transport, and it must be the
// bundleIdentifier variant.
func handshake(t transport.Transport, path string) (string, error) {
	reply, err := t.SendAndWait(nil)
	if err != nil {
		return "", err
	}
	if reply.BundleIdentifier == nil {
		return "", errors.NewInvalidBundleIdentifierOutput(path)
	}
	return *reply.BundleIdentifier, nil
}

func newResolver(bundleIdentifier string, opts ...Option) *Resolver {
	r := &Resolver{
		bundleIdentifier: bundleIdentifier,
		parser:           docmodel.NewMarkdownParser(),
		topicCache:       make(map[string]wire.ResolvedInformation),
		symbolCache:      make(map[string]wire.ResolvedInformation),
		assetCache:       make(map[assetKey]wire.DataAsset),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BundleIdentifier returns the primary bundle identifier this resolver
// answers for.
func (r *Resolver) BundleIdentifier() string {
	return r.bundleIdentifier
}

// Close releases the transport. For a child-process resolver this
// terminates the child, and every later call that needs the peer fails;
// replies already cached are still served. For a service resolver Close
// does nothing.
func (r *Resolver) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Resolve resolves a topic reference against the external resolver. An
// already-resolved reference passes through unchanged. On success the
// result carries a reference in this resolver's primary bundle; on failure
// it pairs the unresolved reference with the failure's description.
//
// An unresolved reference without a bundle identifier is a programming
// error: local references must never reach an external resolver.
func (r *Resolver) Resolve(ref docmodel.TopicReference, _ docmodel.SourceLanguage) docmodel.ResolutionResult {
	if ref.IsResolved() {
		return docmodel.Success(*ref.Resolved)
	}
	if ref.Unresolved == nil || ref.Unresolved.TopicURL == nil {
		panic("resolver: Resolve called with neither a resolved nor an unresolved reference")
	}

	unresolved := *ref.Unresolved
	if unresolved.BundleIdentifier() == "" {
		panic(fmt.Sprintf(
			"resolver: reference %q has no bundle identifier; local references must not be passed to an external resolver",
			unresolved.String()))
	}

	topicURL := unresolved.TopicURL
	if _, err := url.Parse(topicURL.String()); err != nil {
		return docmodel.Failure(unresolved, fmt.Sprintf("unable to reconstruct topic URL from '%s'", topicURL.String()))
	}

	info, err := r.resolveInformationForTopicURL(topicURL.String())
	if err != nil {
		return docmodel.Failure(unresolved, failureDescription(err))
	}

	return docmodel.Success(docmodel.ResolvedReference{
		BundleIdentifier: r.bundleIdentifier,
		Path:             topicURL.Path,
		Fragment:         topicURL.Fragment,
		SourceLanguage:   info.Language,
	})
}

// Entity returns the documentation node for a reference this resolver
// previously resolved. A cache miss is a contract violation and aborts.
func (r *Resolver) Entity(ref docmodel.ResolvedReference) docmodel.Node {
	info, ok := r.topicCache[ref.URL().String()]
	if !ok {
		panic(fmt.Sprintf(
			"resolver: reference %q was previously resolved by this resolver but is not in its cache",
			ref.String()))
	}
	return projection.Node(ref, info, r.parser)
}

// EntityIfPreviouslyResolved returns the documentation node for a reference
// if it is already cached, without issuing any resolve request.
func (r *Resolver) EntityIfPreviouslyResolved(ref docmodel.ResolvedReference) *docmodel.Node {
	if _, ok := r.topicCache[ref.URL().String()]; !ok {
		return nil
	}
	node := r.Entity(ref)
	return &node
}

// URLForResolvedReference returns the canonical external URL for a
// reference this resolver previously resolved. A cache miss aborts.
func (r *Resolver) URLForResolvedReference(ref docmodel.ResolvedReference) *url.URL {
	info, ok := r.topicCache[ref.URL().String()]
	if !ok {
		panic(fmt.Sprintf(
			"resolver: reference %q was previously resolved by this resolver but is not in its cache",
			ref.String()))
	}
	return mustParseURL(info.URL)
}

// URLForResolvedReferenceIfPreviouslyResolved returns the canonical external
// URL if the reference is already cached, without issuing any request.
func (r *Resolver) URLForResolvedReferenceIfPreviouslyResolved(ref docmodel.ResolvedReference) *url.URL {
	if _, ok := r.topicCache[ref.URL().String()]; !ok {
		return nil
	}
	return r.URLForResolvedReference(ref)
}

// SymbolEntity resolves a symbol by its precise identifier and returns its
// documentation node. The minted reference lives in the synthetic symbol
// bundle with the identifier as its path. The caller presents only a USR,
// so the reply is assumed to describe a symbol; if its kind disagrees the
// node is projected without a symbol semantic but the reference is still
// minted.
func (r *Resolver) SymbolEntity(preciseIdentifier string) (docmodel.Node, error) {
	info, err := r.resolveInformationForSymbolIdentifier(preciseIdentifier)
	if err != nil {
		return docmodel.Node{}, err
	}

	ref := docmodel.ResolvedReference{
		BundleIdentifier: SyntheticSymbolBundleIdentifier,
		Path:             "/" + preciseIdentifier,
		SourceLanguage:   info.Language,
	}
	return projection.Node(ref, info, r.parser), nil
}

// URLForResolvedSymbol returns the canonical external URL for a symbol
// reference this resolver minted, or nil when the reference is not in the
// synthetic symbol bundle. A cache miss for a synthetic reference aborts.
func (r *Resolver) URLForResolvedSymbol(ref docmodel.ResolvedReference) *url.URL {
	if ref.BundleIdentifier != SyntheticSymbolBundleIdentifier {
		return nil
	}

	info, ok := r.symbolCache[ref.LastPathComponent()]
	if !ok {
		panic(fmt.Sprintf(
			"resolver: symbol reference %q was previously resolved by this resolver but is not in its cache",
			ref.String()))
	}
	return mustParseURL(info.URL)
}

// PreciseIdentifier returns the precise identifier encoded in an external
// symbol reference minted by this resolver, or "" for any other reference.
// It accepts unresolved references and both resolution outcomes.
func (r *Resolver) PreciseIdentifier(ref docmodel.TopicReference) string {
	var u *url.URL
	switch {
	case ref.Resolved != nil:
		u = ref.Resolved.URL()
	case ref.Unresolved != nil:
		u = ref.Unresolved.TopicURL
	}
	if u == nil || u.Host != SyntheticSymbolBundleIdentifier {
		return ""
	}
	return (docmodel.ResolvedReference{Path: u.Path}).LastPathComponent()
}

// ResolveAsset resolves a named asset in a bundle. Assets are best-effort
// artifacts: every failure is swallowed and reported as absent.
func (r *Resolver) ResolveAsset(assetName, bundleIdentifier string) *wire.DataAsset {
	key := assetKey{name: assetName, bundleIdentifier: bundleIdentifier}
	if asset, ok := r.assetCache[key]; ok {
		return &asset
	}

	asset, err := r.resolveInformationForAsset(assetName, bundleIdentifier)
	if err != nil {
		if r.logger != nil {
			r.logger.Debug("Asset resolution failed", map[string]interface{}{
				"assetName":        assetName,
				"bundleIdentifier": bundleIdentifier,
				"error":            err.Error(),
			})
		}
		return nil
	}

	r.assetCache[key] = asset
	return &asset
}

// resolveInformationForTopicURL answers from the topic cache or asks the
// peer, caching a successful reply under the requested URL.
func (r *Resolver) resolveInformationForTopicURL(topicURL string) (wire.ResolvedInformation, error) {
	if info, ok := r.topicCache[topicURL]; ok {
		return info, nil
	}

	req := wire.NewTopicRequest(topicURL)
	info, err := r.requestInformation(req)
	if err != nil {
		return wire.ResolvedInformation{}, err
	}

	r.topicCache[topicURL] = info
	return info, nil
}

// resolveInformationForSymbolIdentifier answers from the symbol cache or
// asks the peer, caching a successful reply under the precise identifier.
func (r *Resolver) resolveInformationForSymbolIdentifier(preciseIdentifier string) (wire.ResolvedInformation, error) {
	if info, ok := r.symbolCache[preciseIdentifier]; ok {
		return info, nil
	}

	req := wire.NewSymbolRequest(preciseIdentifier)
	info, err := r.requestInformation(req)
	if err != nil {
		return wire.ResolvedInformation{}, err
	}

	r.symbolCache[preciseIdentifier] = info
	return info, nil
}

// resolveInformationForAsset asks the peer for an asset reply
func (r *Resolver) resolveInformationForAsset(assetName, bundleIdentifier string) (wire.DataAsset, error) {
	req := wire.NewAssetRequest(assetName, bundleIdentifier)
	resp, err := r.transport.SendAndWait(&req)
	if err != nil {
		return wire.DataAsset{}, err
	}

	switch {
	case resp.Asset != nil:
		return *resp.Asset, nil
	case resp.BundleIdentifier != nil:
		return wire.DataAsset{}, errors.NewSentBundleIdentifierAgain()
	case resp.ErrorMessage != nil:
		return wire.DataAsset{}, errors.NewForwardedError(*resp.ErrorMessage)
	default:
		return wire.DataAsset{}, errors.NewUnexpectedResponse(resp.Kind(), req.Description())
	}
}

// requestInformation sends a topic or symbol request and maps the reply
// variants onto the error taxonomy.
func (r *Resolver) requestInformation(req wire.Request) (wire.ResolvedInformation, error) {
	resp, err := r.transport.SendAndWait(&req)
	if err != nil {
		return wire.ResolvedInformation{}, err
	}

	switch {
	case resp.ResolvedInformation != nil:
		return *resp.ResolvedInformation, nil
	case resp.BundleIdentifier != nil:
		// The handshake already happened; a second announcement is a
		// protocol violation.
		return wire.ResolvedInformation{}, errors.NewSentBundleIdentifierAgain()
	case resp.ErrorMessage != nil:
		return wire.ResolvedInformation{}, errors.NewForwardedError(*resp.ErrorMessage)
	default:
		return wire.ResolvedInformation{}, errors.NewUnexpectedResponse(resp.Kind(), req.Description())
	}
}

// failureDescription extracts the message a failed resolution should carry:
// a peer's errorMessage travels verbatim, everything else keeps its full
// error text.
func failureDescription(err error) string {
	if be, ok := err.(*errors.BridgeError); ok && be.Code == errors.ForwardedError {
		return be.Message
	}
	return err.Error()
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("resolver: cached resolved information carries an unparseable URL %q", raw))
	}
	return u
}
