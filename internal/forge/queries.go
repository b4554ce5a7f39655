package forge

// pullRequestFields is everything the list and detail views read.
const pullRequestFields = `
fragment pullRequestFields on PullRequest {
  id
  number
  title
  url
  state
  isDraft
  merged
  mergeable
  createdAt
  lastEditedAt
  mergedAt
  closedAt
  additions
  deletions
  changedFiles
  author { login avatarUrl }
  labels(first: 10) { nodes { name color } }
  assignees(first: 10) { nodes { login avatarUrl } }
  reviews(first: 50) {
    totalCount
    nodes {
      id
      state
      submittedAt
      updatedAt
      bodyText
      author { login avatarUrl }
      comments(first: 50) {
        totalCount
        nodes { outdated isMinimized author { login avatarUrl } }
      }
    }
  }
  commits(last: 1) {
    nodes {
      commit {
        abbreviatedOid
        authoredDate
        statusCheckRollup {
          state
          contexts(first: 100) {
            nodes {
              __typename
              ... on CheckRun { name conclusion status }
              ... on StatusContext { name: context }
            }
          }
        }
      }
    }
  }
  timelineItems(first: 100, itemTypes: [ASSIGNED_EVENT, PULL_REQUEST_REVIEW, PULL_REQUEST_COMMIT, ISSUE_COMMENT, REVIEW_REQUESTED_EVENT, MERGED_EVENT, CLOSED_EVENT]) {
    totalCount
    nodes {
      __typename
      ... on AssignedEvent { id createdAt assignee { ... on Actor { login avatarUrl } } }
      ... on PullRequestReview {
        id createdAt updatedAt submittedAt state body bodyText
        author { login avatarUrl }
        comments { totalCount }
      }
      ... on PullRequestCommit {
        id
        commit { abbreviatedOid authoredDate author { user { login avatarUrl } } }
      }
      ... on IssueComment { id createdAt updatedAt bodyText author { login avatarUrl } }
      ... on ReviewRequestedEvent {
        id createdAt
        actor { login avatarUrl }
        requestedReviewer {
          __typename
          ... on User { login userName: name }
          ... on Team { name }
          ... on Mannequin { login }
        }
      }
      ... on MergedEvent { id createdAt actor { login avatarUrl } }
      ... on ClosedEvent { id createdAt actor { login avatarUrl } }
    }
  }
}
`

const searchQuery = `
query SearchPullRequests($q: String!, $first: Int!, $after: String) {
  search(query: $q, type: ISSUE, first: $first, after: $after) {
    issueCount
    pageInfo { endCursor hasNextPage }
    nodes { ...pullRequestFields }
  }
}
` + pullRequestFields

const cursorQuery = `
query SearchCursors($q: String!, $first: Int!, $after: String) {
  search(query: $q, type: ISSUE, first: $first, after: $after) {
    issueCount
    pageInfo { endCursor hasNextPage }
  }
}
`

const pullRequestQuery = `
query GetPullRequest($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    pullRequest(number: $number) { ...pullRequestFields }
  }
}
` + pullRequestFields

const viewerQuery = `
query {
  viewer {
    login
    avatarUrl
    repositories(first: 10, orderBy: {field: PUSHED_AT, direction: DESC}) {
      nodes { name url owner { login } }
    }
  }
}
`
