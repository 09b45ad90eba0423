package docstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotate_FindByID(t *testing.T) {
	t.Parallel()

	ann := Annotate(findByIDDoc)

	require.NotNil(t, ann.Summary)
	assert.Equal(t, "Find a user by their unique identifier.", *ann.Summary)
	assert.Nil(t, ann.Description)

	assert.Equal(t, []FieldEntry{{Name: "user_id", Description: "The user's unique ID"}}, ann.Params)

	require.NotNil(t, ann.Returns)
	require.NotNil(t, ann.Returns.TypeHint)
	assert.Equal(t, "Optional[User]", *ann.Returns.TypeHint)
	assert.Equal(t, "The User if found, None otherwise", ann.Returns.Description)

	require.Len(t, ann.Raises, 2)
	assert.Equal(t, "DatabaseError", ann.Raises[0].Name)
	assert.Equal(t, "If connection fails", ann.Raises[0].Description)
	assert.Equal(t, "ValidationError", ann.Raises[1].Name)
	assert.Equal(t, "If user_id is invalid", ann.Raises[1].Description)

	assert.Nil(t, ann.Deprecated)
	assert.Empty(t, ann.Todos)
	assert.Empty(t, ann.UnknownSections)
}

func TestAnnotate_EmptyLeavesEverythingUnset(t *testing.T) {
	t.Parallel()

	ann := Annotate("")
	assert.Equal(t, Annotation{}, ann)
	assert.True(t, ann.IsEmpty())
}

func TestAnnotate_ClassDocstring(t *testing.T) {
	t.Parallel()

	raw := `Repository for user data access.

    Provides CRUD operations for User entities with
    built-in caching for frequently accessed records.

    Attributes:
        connection: Database connection instance
        cache_ttl (int): Cache time-to-live in seconds

    Example:
        >>> repo = UserRepository(conn, cache_ttl=300)
        >>> user = repo.find_by_id("user-123")
        >>>     print(user.email)

    Note:
        All methods are thread-safe.

    Warning:
        Do not use in untrusted environments without
        proper input validation.

    See Also:
        User: For the entity
        find_by_id
    `
	ann := Annotate(raw)

	require.NotNil(t, ann.Description)
	assert.Equal(t, "Provides CRUD operations for User entities with built-in caching for frequently accessed records.", *ann.Description)

	require.Len(t, ann.Attributes, 2)
	assert.Equal(t, "connection", ann.Attributes[0].Name)
	assert.Equal(t, StringPtr("int"), ann.Attributes[1].TypeHint)

	require.Len(t, ann.Examples, 1)
	assert.Equal(t, ">>> repo = UserRepository(conn, cache_ttl=300)\n>>> user = repo.find_by_id(\"user-123\")\n>>>     print(user.email)", ann.Examples[0])

	assert.Equal(t, []string{"All methods are thread-safe."}, ann.Notes)
	assert.Equal(t, []string{"Do not use in untrusted environments without proper input validation."}, ann.Warnings)
	assert.Equal(t, []string{"User: For the entity", "find_by_id"}, ann.SeeAlso)
	assert.Empty(t, ann.Params)
}

func TestAnnotate_Deprecated(t *testing.T) {
	t.Parallel()

	ann := Annotate("Find a user by email.\n\nDeprecated:\n    Use find_by_id with email lookup instead.\n")
	require.NotNil(t, ann.Deprecated)
	assert.Equal(t, "Use find_by_id with email lookup instead.", *ann.Deprecated)
}

func TestAnnotate_PresentButEmptySections(t *testing.T) {
	t.Parallel()

	ann := Annotate("Summary.\n\nDeprecated:\n\nReturns:")
	require.NotNil(t, ann.Deprecated)
	assert.Equal(t, "", *ann.Deprecated)
	require.NotNil(t, ann.Returns)
	assert.Nil(t, ann.Returns.TypeHint)
	assert.Equal(t, "", ann.Returns.Description)
}

func TestAnnotate_Todos(t *testing.T) {
	t.Parallel()

	raw := "Do a thing.\n\nTodo:\n    * Handle retries\n    * Add metrics\n      for latency\n"
	ann := Annotate(raw)
	assert.Equal(t, []string{"Handle retries", "Add metrics for latency"}, ann.Todos)
}

func TestAnnotate_DuplicateSections(t *testing.T) {
	t.Parallel()

	raw := `Summary.

Note:
    first note

Args:
    a: first arg

Note:
    second note

Args:
    b: second arg

Returns:
    int: the first

Returns:
    str: the second
`
	ann := Annotate(raw)
	assert.Equal(t, []string{"first note", "second note"}, ann.Notes)
	require.Len(t, ann.Params, 2)
	assert.Equal(t, "a", ann.Params[0].Name)
	assert.Equal(t, "b", ann.Params[1].Name)

	require.NotNil(t, ann.Returns)
	assert.Equal(t, StringPtr("int"), ann.Returns.TypeHint)

	var returns int
	for _, s := range ann.Sections {
		if s.Kind == SectionReturns {
			returns++
		}
	}
	assert.Equal(t, 2, returns)
}

func TestAnnotate_UnknownSectionsLossless(t *testing.T) {
	t.Parallel()

	headers := []string{"Usage", "Custom Thing", "Version", "Methods"}
	raw := "Summary.\n"
	for _, h := range headers {
		raw += "\n" + h + ":\n    body of " + h + "\n      indented detail\n"
	}

	ann := Annotate(raw)
	require.Len(t, ann.UnknownSections, len(headers))
	for i, h := range headers {
		assert.Equal(t, h, ann.UnknownSections[i].Header)
		assert.Equal(t, "body of "+h+"\n  indented detail", ann.UnknownSections[i].Body)
	}
}

func TestAnnotate_Supplements(t *testing.T) {
	t.Parallel()

	raw := `Stream records.

Keyword Args:
    batch (int): Batch size

Yields:
    Record: The next record

Warns:
    UserWarning when the stream is slow

References:
    RFC 4180

Since:
    2.1
`
	ann := Annotate(raw)
	require.Len(t, ann.KeywordArgs, 1)
	assert.Equal(t, "batch", ann.KeywordArgs[0].Name)
	require.NotNil(t, ann.Yields)
	assert.Equal(t, StringPtr("Record"), ann.Yields.TypeHint)
	assert.Equal(t, []string{"UserWarning when the stream is slow"}, ann.Warnings)
	assert.Equal(t, []string{"RFC 4180"}, ann.SeeAlso)
	assert.Equal(t, StringPtr("2.1"), ann.Since)
	assert.Nil(t, ann.Returns)
}

func TestAnnotate_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := Annotate(findByIDDoc)
	cp := orig.clone()
	require.Equal(t, orig, cp)

	cp.Params[0].Name = "changed"
	*cp.Summary = "changed"
	cp.Sections[0].Body[0] = "changed"

	assert.Equal(t, "user_id", orig.Params[0].Name)
	assert.Equal(t, "Find a user by their unique identifier.", *orig.Summary)
	assert.Equal(t, "Find a user by their unique identifier.", orig.Sections[0].Body[0])
}

func TestAnnotate_HeaderFirst(t *testing.T) {
	t.Parallel()

	ann := Annotate("Deprecated:\n    Use find_by_id with email lookup instead.")
	assert.Nil(t, ann.Summary)
	require.NotNil(t, ann.Deprecated)
	assert.Equal(t, "Use find_by_id with email lookup instead.", *ann.Deprecated)

	ann = Annotate("Todo:\n    one line")
	assert.Equal(t, []string{"one line"}, ann.Todos)
}

func TestAnnotate_SphinxFields(t *testing.T) {
	t.Parallel()

	raw := `Fetch a user.

    :param str user_id: The user's ID.
    :param cache: Use the cache,
        when warm.
    :type cache: bool
    :type missing: int
    :keyword timeout: Seconds to wait.
    :returns: The user.
    :rtype: Optional[User]
    :raises ValueError: If user_id is empty.
    :raises: something odd
    :ivar count: Number of lookups.
    :vartype count: int
    `
	ann := Annotate(raw)

	require.NotNil(t, ann.Summary)
	assert.Equal(t, "Fetch a user.", *ann.Summary)
	assert.Nil(t, ann.Description)

	assert.Equal(t, []FieldEntry{
		{Name: "user_id", TypeHint: StringPtr("str"), Description: "The user's ID."},
		{Name: "cache", TypeHint: StringPtr("bool"), Description: "Use the cache, when warm."},
	}, ann.Params)
	assert.Equal(t, []FieldEntry{{Name: "timeout", Description: "Seconds to wait."}}, ann.KeywordArgs)
	assert.Equal(t, &ReturnDoc{TypeHint: StringPtr("Optional[User]"), Description: "The user."}, ann.Returns)
	assert.Equal(t, []FieldEntry{
		{Name: "ValueError", Description: "If user_id is empty."},
		{Description: "something odd", Unnamed: true},
	}, ann.Raises)
	assert.Equal(t, []FieldEntry{{Name: "count", TypeHint: StringPtr("int"), Description: "Number of lookups."}}, ann.Attributes)
}

func TestAnnotate_SphinxTypeBeforeParam(t *testing.T) {
	t.Parallel()

	ann := Annotate(":rtype: int\n:type x: str\n:param x: The value.\n:yields: Rows.\n:ytype: Row")
	assert.Equal(t, []FieldEntry{{Name: "x", TypeHint: StringPtr("str"), Description: "The value."}}, ann.Params)
	assert.Equal(t, &ReturnDoc{TypeHint: StringPtr("int")}, ann.Returns)
	assert.Equal(t, &ReturnDoc{TypeHint: StringPtr("Row"), Description: "Rows."}, ann.Yields)
}

func TestAnnotate_SphinxSections(t *testing.T) {
	t.Parallel()

	raw := `Cache helper.

:deprecated: Use the new cache.
:since: 1.2
:todo: Handle retries
    and backoff.
:note: Thread safe.
:warning: Slow on cold start.
:seealso: fetch
:example: helper()
:meta private:
Trailing prose after the fields.
`
	ann := Annotate(raw)

	require.NotNil(t, ann.Deprecated)
	assert.Equal(t, "Use the new cache.", *ann.Deprecated)
	assert.Equal(t, StringPtr("1.2"), ann.Since)
	assert.Equal(t, []string{"Handle retries and backoff."}, ann.Todos)
	assert.Equal(t, []string{"Thread safe."}, ann.Notes)
	assert.Equal(t, []string{"Slow on cold start."}, ann.Warnings)
	assert.Equal(t, []string{"fetch"}, ann.SeeAlso)
	assert.Equal(t, []string{"helper()"}, ann.Examples)
	assert.Equal(t, []UnknownSection{{Header: ":meta private:"}}, ann.UnknownSections)
	require.NotNil(t, ann.Description)
	assert.Equal(t, "Trailing prose after the fields.", *ann.Description)
}

func TestAnnotate_Directives(t *testing.T) {
	t.Parallel()

	raw := `Old API.

.. deprecated:: 2.0
   Use new_api instead.

.. versionadded:: 1.4
.. note:: Thread safe.
`
	ann := Annotate(raw)
	require.NotNil(t, ann.Deprecated)
	assert.Equal(t, "Use new_api instead.", *ann.Deprecated)
	assert.Equal(t, StringPtr("1.4"), ann.Since)
	assert.Equal(t, []string{"Thread safe."}, ann.Notes)
}

func TestAnnotate_ReceivesAndClassAttributes(t *testing.T) {
	t.Parallel()

	raw := `Accumulate values.

Receives:
    value (int): Number sent into the generator

Class Attributes:
    total: Running sum
`
	ann := Annotate(raw)
	assert.Equal(t, []FieldEntry{{Name: "value", TypeHint: StringPtr("int"), Description: "Number sent into the generator"}}, ann.Receives)
	assert.Equal(t, []FieldEntry{{Name: "total", Description: "Running sum"}}, ann.Attributes)
	assert.Empty(t, ann.UnknownSections)

	cp := ann.clone()
	cp.Receives[0].Name = "changed"
	assert.Equal(t, "value", ann.Receives[0].Name)
}
